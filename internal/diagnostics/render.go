package diagnostics

import "github.com/pterm/pterm"

var (
	errorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorColorFG = pterm.FgRed
	warnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	warnColorFG  = pterm.FgYellow
)

// PrintError renders err to the terminal with a colored "Error" banner.
func PrintError(err error) {
	errorStyleBG.Print("Error")
	errorColorFG.Println(" " + err.Error())
}

// PrintWarning renders msg to the terminal with a colored "Warning" banner.
func PrintWarning(msg string) {
	warnStyleBG.Print("Warning")
	warnColorFG.Println(" " + msg)
}
