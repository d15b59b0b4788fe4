package utils

// Layouts accepted for dates and times entered in the dashboard
const (
	DATE_LAYOUT         = "2006-01-02"
	DATE_LAYOUT_SLASHED = "2006/01/02"
	DATE_LAYOUT_DMY     = "02/01/2006"
	DATETIME_LAYOUT     = "2006-01-02T15:04:05Z07:00"
	TIME_LAYOUT         = "15:04"
	DISPLAY_DATE_LAYOUT = "02 Jan 2006"
)

// Arabic Unicode block kept by the slug normalizer
const (
	arabicBlockStart = '؀'
	arabicBlockEnd   = 'ۿ'
)
