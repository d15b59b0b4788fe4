package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"delegation-service/pkg/utils"
)

// Prints the path segment an event name produces, one per line.
// Names come from the arguments, or from stdin when none are given.
func main() {
	linkName := flag.String("link", "", "preferred latin short name")
	flag.Parse()

	if flag.NArg() > 0 {
		name := strings.Join(flag.Args(), " ")
		fmt.Println(utils.Normalize(name, *linkName))
		warnDropped(name, *linkName)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		name := scanner.Text()
		if strings.TrimSpace(name) == "" {
			continue
		}
		fmt.Printf("%s\t%s\n", utils.Normalize(name, *linkName), name)
		warnDropped(name, *linkName)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}

func warnDropped(name, linkName string) {
	if utils.LosesCompatibilityForms(name, linkName) {
		fmt.Fprintf(os.Stderr, "warning: full-width or compatibility characters dropped from %q\n", name)
	}
}
