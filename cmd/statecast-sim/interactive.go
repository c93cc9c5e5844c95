package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// interactive drives the simulator from a readline prompt.
type interactive struct {
	device  *Device
	console *consoleCloud // nil when publishing over NATS
	rl      *readline.Instance
}

func newInteractive(device *Device, console *consoleCloud) (*interactive, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "device> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline: %w", err)
	}

	if console != nil {
		// Publishes print through readline so they do not mangle the
		// prompt.
		console.SetOutput(rl.Stdout())
	}
	return &interactive{device: device, console: console, rl: rl}, nil
}

// Stdout returns a writer coordinated with the prompt, for log output.
func (i *interactive) Stdout() io.Writer {
	return i.rl.Stdout()
}

// Run reads commands until exit or EOF.
func (i *interactive) Run() {
	defer i.rl.Close()

	i.printHelp()

	for {
		line, err := i.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(i.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			i.printHelp()

		case "set", "s":
			i.cmdSet(args)

		case "level", "l":
			i.cmdLevel(args)

		case "disable":
			i.cmdDisable(args, true)

		case "enable":
			i.cmdDisable(args, false)

		case "debounce":
			i.cmdDebounce(args)

		case "status":
			i.cmdStatus()

		case "sync":
			i.device.Sync()

		case "process":
			i.device.Process()

		case "connect":
			i.cmdConnect(true)

		case "disconnect":
			i.cmdConnect(false)

		case "quit", "exit", "q":
			fmt.Fprintln(i.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(i.rl.Stdout(), "Unknown command %q, try 'help'\n", cmd)
		}
	}
}

func (i *interactive) printHelp() {
	fmt.Fprint(i.rl.Stdout(), `Commands:
  set <key> <value>            update a property (string or numeric)
  level <key> <value> <level>  update a notification
  disable <key>                exclude a property from publication
  enable <key>                 re-include a property
  debounce <key> <ms>          set a property's debounce delay
  status                       print registered values
  sync                         run one property cycle now
  process                      run one notification sweep now
  connect / disconnect         toggle the simulated cloud link
  quit                         exit
`)
}

func (i *interactive) cmdSet(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(i.rl.Stdout(), "Usage: set <key> <value>")
		return
	}

	id, ok := i.device.PropID(args[0])
	if !ok {
		fmt.Fprintf(i.rl.Stdout(), "Unknown property %q\n", args[0])
		return
	}

	if v, err := strconv.ParseInt(args[1], 10, 32); err == nil {
		if !i.device.Props.Update(id, int32(v)) {
			fmt.Fprintln(i.rl.Stdout(), "No change")
		}
		return
	}
	if !i.device.Props.UpdateString(id, args[1]) {
		fmt.Fprintln(i.rl.Stdout(), "No change")
	}
}

func (i *interactive) cmdLevel(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(i.rl.Stdout(), "Usage: level <key> <value> <level>")
		return
	}

	id, ok := i.device.NoteID(args[0])
	if !ok {
		fmt.Fprintf(i.rl.Stdout(), "Unknown notification %q\n", args[0])
		return
	}

	value, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		fmt.Fprintf(i.rl.Stdout(), "Bad value %q\n", args[1])
		return
	}
	level, err := strconv.ParseUint(args[2], 10, 8)
	if err != nil {
		fmt.Fprintf(i.rl.Stdout(), "Bad level %q\n", args[2])
		return
	}
	i.device.Notify.Update(id, int32(value), uint8(level))
}

func (i *interactive) cmdDisable(args []string, disabled bool) {
	if len(args) != 1 {
		fmt.Fprintln(i.rl.Stdout(), "Usage: disable|enable <key>")
		return
	}

	id, ok := i.device.PropID(args[0])
	if !ok {
		fmt.Fprintf(i.rl.Stdout(), "Unknown property %q\n", args[0])
		return
	}
	i.device.Props.SetDisabled(id, disabled)
}

func (i *interactive) cmdDebounce(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(i.rl.Stdout(), "Usage: debounce <key> <ms>")
		return
	}

	id, ok := i.device.PropID(args[0])
	if !ok {
		fmt.Fprintf(i.rl.Stdout(), "Unknown property %q\n", args[0])
		return
	}
	ms, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		fmt.Fprintf(i.rl.Stdout(), "Bad delay %q\n", args[1])
		return
	}
	i.device.Props.SetDebounceDelay(id, uint32(ms))
}

func (i *interactive) cmdStatus() {
	out := i.rl.Stdout()

	fmt.Fprintln(out, "Properties:")
	for _, p := range i.device.cfg.Properties {
		id, _ := i.device.PropID(p.Key)
		state := ""
		if i.device.Props.IsDisabled(id) {
			state = " (disabled)"
		}
		if p.Type == "string" {
			s, _ := i.device.Props.StringValue(id)
			fmt.Fprintf(out, "  %-12s %q%s\n", p.Key, s, state)
			continue
		}
		fmt.Fprintf(out, "  %-12s %d%s\n", p.Key, i.device.Props.Value(id), state)
	}

	fmt.Fprintln(out, "Notifications:")
	for _, n := range i.device.cfg.Notifications {
		id, _ := i.device.NoteID(n.Key)
		fmt.Fprintf(out, "  %-12s value=%d level=%d\n",
			n.Key, i.device.Notify.Value(id), i.device.Notify.Level(id))
	}
}

func (i *interactive) cmdConnect(connected bool) {
	if i.console == nil {
		fmt.Fprintln(i.rl.Stdout(), "Connectivity follows the NATS connection")
		return
	}
	i.console.SetConnected(connected)
	if connected {
		fmt.Fprintln(i.rl.Stdout(), "Connected")
	} else {
		fmt.Fprintln(i.rl.Stdout(), "Disconnected")
	}
}
