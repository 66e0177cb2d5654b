package stringutil

// SpinnerFrames contains the animation frames for a braille spinner.
// Used by progress displays in long-running commands.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
