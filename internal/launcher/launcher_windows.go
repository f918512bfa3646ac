//go:build windows

package launcher

func platformCommand() (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler"}
}
