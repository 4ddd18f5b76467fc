package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which only the focused pane
	// is shown.
	LayoutCompactWidth = 100

	// LayoutDateWidth is the minimum file pane width to show processed times.
	LayoutDateWidth = 44

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = 250 * time.Millisecond

	// FlashDuration is how long an action result stays in the footer.
	FlashDuration = 6 * time.Second

	// ActionTimeout bounds a single user action such as an export.
	ActionTimeout = 2 * time.Minute
)

// queueBarWidth is the width of the header progress bar.
const queueBarWidth = 20
