package constants

// Status bar layout
const (
	// StatusBarHeight is the number of terminal rows reserved below the canvas
	StatusBarHeight = 1

	// KeyHints is shown at the right of the status bar
	KeyHints = "n:new s:switch p:pause q:quit"

	// Mode indicator text
	ModeTextIdle    = " IDLE    "
	ModeTextRunning = " RUNNING "
	ModeTextPaused  = " PAUSED  "
	ModeTextPrompt  = " INPUT   "
)

// Prompt text for the start sequence
const (
	PromptWidth  = "canvas width (px, empty = fit): "
	PromptHeight = "canvas height (px, empty = fit): "
)

// PausedDim is the brightness factor applied to balls while motion is paused
const PausedDim = 0.5
