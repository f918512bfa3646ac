//go:build darwin

package launcher

func platformCommand() (string, []string) {
	return "open", nil
}
