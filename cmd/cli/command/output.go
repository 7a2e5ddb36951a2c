package command

import (
	"fmt"

	"github.com/fatih/color"
)

func printRule() {
	fmt.Println("─────────────────────────────────────────────────────────")
}

func mark(ok bool) string {
	if ok {
		return color.GreenString("✓")
	}
	return color.HiBlackString("·")
}
