package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errNotNumber = errors.New("not a number")

// prompter reads answers to interactive questions. Prompts go to w.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &prompter{r: br, w: w}
}

// Text prints prompt and reads one trimmed line. A final line without a
// newline is accepted; EOF with nothing read is returned as io.EOF.
func (p *prompter) Text(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.w, prompt+": "); err != nil {
		return "", err
	}
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// TextDefault is Text, but an empty answer keeps def.
func (p *prompter) TextDefault(prompt, def string) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	s, err := p.Text(prompt)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Multiline reads lines until an empty one and joins them with '\n'.
func (p *prompter) Multiline(prompt string) (string, error) {
	if _, err := fmt.Fprintln(p.w, prompt+" (empty line to finish)"); err != nil {
		return "", err
	}
	var lines []string
	for {
		line, err := p.r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// Float reads a number. Empty input is an error naming the prompt.
func (p *prompter) Float(prompt string) (float64, error) {
	s, err := p.Text(prompt)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is %w", prompt, s, errNotNumber)
	}
	return f, nil
}

// Password reads a secret from the terminal without echo. The caller
// should wipe the returned slice.
func (p *prompter) Password(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(p.w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
