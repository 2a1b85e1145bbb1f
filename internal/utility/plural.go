package utility

import "fmt"

// Times renders an occurrence count as "once" or "N times".
func Times(n int) string {
	if n == 1 {
		return "once"
	}
	return fmt.Sprintf("%d times", n)
}
