package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/andrescamacho/handicraft-go/internal/adapters/statelog"
)

// overwritePrompt asks on out, and reads from in, whether an existing state
// log may be replaced. Anything but y/n asks again.
func overwritePrompt(in io.Reader, out io.Writer) statelog.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(path string) (bool, error) {
		fmt.Fprintf(out, "There is already a file named %s! ", path)
		for {
			fmt.Fprint(out, "Overwrite? [y/n] ")
			line, err := reader.ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				return true, nil
			case "n", "no":
				return false, nil
			}
			if err != nil {
				return false, fmt.Errorf("no answer to overwrite prompt: %w", err)
			}
		}
	}
}
