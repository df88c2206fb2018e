package browser

import (
	"fmt"
	"strings"
)

func ChromiumArgs(opts Options) []string {
	args := make([]string, 0, len(opts.Args)+2)
	if opts.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args, opts.Args...)
	if opts.Width > 0 && opts.Height > 0 {
		args = append(args, fmt.Sprintf("--window-size=%d,%d", opts.Width, opts.Height))
	}
	return args
}

func FirefoxArgs(opts Options) []string {
	args := make([]string, 0, len(opts.Args)+3)
	if opts.Headless {
		args = append(args, "--headless")
	}
	if opts.Width > 0 && opts.Height > 0 {
		args = append(args,
			fmt.Sprintf("--width=%d", opts.Width),
			fmt.Sprintf("--height=%d", opts.Height))
	}
	return append(args, opts.Args...)
}

// parseFlag splits "--name=value" into its parts. Bare switches map to true.
func parseFlag(arg string) (string, any) {
	arg = strings.TrimLeft(arg, "-")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, value
	}
	return arg, true
}

func envMap(env []string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	m := make(map[string]string, len(env))
	for _, e := range env {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	return m
}
