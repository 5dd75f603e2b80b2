package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"

	"github.com/s2kit/schemadump/internal/memory"
)

// attachTarget attaches to the named process. When the process is not
// running, interactive sessions are offered a picker over what is running
// instead of a bare failure.
func attachTarget(name string, interactive bool) (*memory.Process, error) {
	proc, err := memory.Attach(name)
	if err == nil {
		return proc, nil
	}
	if !errors.Is(err, memory.ErrProcessNotFound) || !interactive || !isatty.IsTerminal(os.Stdin.Fd()) {
		return nil, err
	}

	running, listErr := memory.ListProcesses()
	if listErr != nil || len(running) == 0 {
		return nil, err
	}

	options := make([]string, len(running))
	for i, rp := range running {
		options[i] = fmt.Sprintf("%s (pid %d)", rp.Name, rp.Pid)
	}

	var selected int
	prompt := &survey.Select{
		Message:  fmt.Sprintf("%s is not running. Attach to another process:", name),
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, err
	}

	pick := running[selected]
	return memory.AttachPid(pick.Pid, pick.Name)
}
