//go:build !windows && !darwin

package launcher

func platformCommand() (string, []string) {
	return "xdg-open", nil
}
