package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli"
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/mcascone/captain-config/internal/config"
	"github.com/mcascone/captain-config/internal/control"
	"github.com/mcascone/captain-config/internal/device"
	"github.com/mcascone/captain-config/internal/midi"
)

var version string

func init() {
	if version == "" {
		version = "unknown"
	}
}

// loadSet parses path and normalizes it for its own device, or for the
// override when given. Diagnostics go to stderr so stdout stays clean
// for piped output.
func loadSet(path, deviceOverride string) (*control.Set, *config.Document, error) {
	doc, err := config.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	variant, err := doc.Variant()
	if deviceOverride != "" {
		variant, err = device.Parse(deviceOverride)
	}
	if err != nil {
		return nil, nil, err
	}
	set, diags := config.Normalize(doc, variant)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
	return set, doc, nil
}

func describeAssignment(a control.Assignment) string {
	switch a.Kind {
	case control.KindCC:
		return fmt.Sprintf("cc %d ch %d (on %d, off %d)", a.Identifier, a.Channel, a.On, a.Off)
	case control.KindNote:
		return fmt.Sprintf("note %d ch %d (vel %d/%d)", a.Identifier, a.Channel, a.On, a.Off)
	case control.KindProgram:
		return fmt.Sprintf("pc %d ch %d", a.On, a.Channel)
	case control.KindProgramInc:
		return fmt.Sprintf("pc +%d ch %d", a.On, a.Channel)
	case control.KindProgramDec:
		return fmt.Sprintf("pc -%d ch %d", a.On, a.Channel)
	}
	return string(a.Kind)
}

var validateCmd = cli.Command{
	Name:      "validate",
	Aliases:   []string{"v"},
	Usage:     "Checks a config file and reports every diagnostic",
	ArgsUsage: "<config.json>",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "strict, s",
			Usage: `Exit nonzero when any diagnostic is reported`,
		},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() < 1 {
			cli.ShowCommandHelp(ctx, "validate")
			os.Exit(1)
		}
		doc, err := config.ParseFile(ctx.Args()[0])
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		variant, err := doc.Variant()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		set, diags := config.Normalize(doc, variant)
		for _, d := range diags {
			fmt.Println(d.String())
		}
		active := 0
		for _, c := range set.Controls {
			if c.Active() {
				active++
			}
		}
		fmt.Printf("%s: %d active controls, %d diagnostics\n", variant, active, len(diags))
		if ctx.Bool("strict") && len(diags) > 0 {
			return cli.NewExitError(fmt.Errorf("%d diagnostics", len(diags)), 1)
		}
		return nil
	},
}

var normalizeCmd = cli.Command{
	Name:      "normalize",
	Aliases:   []string{"n"},
	Usage:     "Rewrites a config file with every default made explicit",
	ArgsUsage: "<config.json>",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "output, o",
			Usage: `Write to file instead of stdout`,
		},
		cli.StringFlag{
			Name:  "device, d",
			Usage: `Normalize for this device instead of the file's own`,
		},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() < 1 {
			cli.ShowCommandHelp(ctx, "normalize")
			os.Exit(1)
		}
		set, doc, err := loadSet(ctx.Args()[0], ctx.String("device"))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		data, err := config.Encode(set, doc.Display)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if out := ctx.String("output"); out != "" {
			if err := os.WriteFile(out, data, 0644); err != nil {
				return cli.NewExitError(err, 1)
			}
			return nil
		}
		fmt.Print(string(data))
		return nil
	},
}

var showCmd = cli.Command{
	Name:      "show",
	Aliases:   []string{"s"},
	Usage:     "Prints the resolved assignment of every control",
	ArgsUsage: "<config.json>",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "all, a",
			Usage: `Include disabled controls`,
		},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() < 1 {
			cli.ShowCommandHelp(ctx, "show")
			os.Exit(1)
		}
		set, _, err := loadSet(ctx.Args()[0], "")
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		for _, c := range set.Controls {
			if !c.Active() && !ctx.Bool("all") {
				continue
			}
			desc := string(c.Message.Kind())
			status := "  [disabled]"
			if a, ok := set.Assignment(c.Identity, 0); ok {
				desc = describeAssignment(a)
				status = ""
			}
			fmt.Printf("%-16s %-6s %-10s %-9s %s%s\n",
				c.Identity, c.Label, string(c.Color), string(c.EffectiveMode()), desc, status)
			if c.Sweep != nil {
				fmt.Printf("%16s   sweep %d..%d start %d", "", c.Sweep.Min, c.Sweep.Max, c.Sweep.Initial)
				if c.Sweep.Stepped() {
					fmt.Printf(" in %d steps", c.Sweep.Steps)
				}
				fmt.Println()
			}
			if c.Response != nil {
				fmt.Printf("%16s   range %d..%d polarity %s threshold %d\n",
					"", c.Response.Min, c.Response.Max, c.Response.Polarity, c.Response.Threshold)
			}
			if len(c.States) > 1 {
				fmt.Printf("%16s   %d keytime states\n", "", len(c.States))
			}
		}
		return nil
	},
}

var initCmd = cli.Command{
	Name:      "init",
	Usage:     "Writes a fresh default config for a device",
	ArgsUsage: "[std10|mini6]",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "output, o",
			Usage: `Write to file instead of stdout`,
		},
	},
	Action: func(ctx *cli.Context) error {
		variant, err := device.Parse(ctx.Args().First())
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		doc := &config.Document{Device: control.Str(string(variant))}
		set, _ := config.Normalize(doc, variant)
		data, err := config.Encode(set, nil)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if out := ctx.String("output"); out != "" {
			if err := os.WriteFile(out, data, 0644); err != nil {
				return cli.NewExitError(err, 1)
			}
			return nil
		}
		fmt.Print(string(data))
		return nil
	},
}

var libraryFlag = cli.StringFlag{
	Name:  "library, l",
	Usage: `Preset store location (default: platform config dir)`,
}

func libraryPath(ctx *cli.Context) (string, error) {
	if p := ctx.String("library"); p != "" {
		return p, nil
	}
	return config.LibraryPath()
}

func openLibrary(ctx *cli.Context) (*config.Library, string, error) {
	path, err := libraryPath(ctx)
	if err != nil {
		return nil, "", err
	}
	lib, err := config.LoadLibrary(path)
	if err != nil {
		return nil, "", err
	}
	return lib, path, nil
}

var presetCmd = cli.Command{
	Name:    "preset",
	Aliases: []string{"p"},
	Usage:   "Manages the local preset library",
	Subcommands: []cli.Command{
		{
			Name:  "list",
			Usage: "Lists saved presets",
			Flags: []cli.Flag{libraryFlag},
			Action: func(ctx *cli.Context) error {
				lib, _, err := openLibrary(ctx)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				for _, p := range lib.Presets {
					mark := " "
					if p.ID == lib.CurrentID {
						mark = "*"
					}
					fmt.Printf("%s %-20s %-7s %s  %s\n",
						mark, p.Name, p.Device, p.SavedAt.Format("2006-01-02 15:04"), p.ID)
				}
				return nil
			},
		},
		{
			Name:      "save",
			Usage:     "Saves a config file as a named preset",
			ArgsUsage: "<name> <config.json>",
			Flags:     []cli.Flag{libraryFlag},
			Action: func(ctx *cli.Context) error {
				if ctx.NArg() < 2 {
					cli.ShowCommandHelp(ctx, "save")
					os.Exit(1)
				}
				name := ctx.Args()[0]
				set, doc, err := loadSet(ctx.Args()[1], "")
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				data, err := config.Encode(set, doc.Display)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				lib, path, err := openLibrary(ctx)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				p := lib.Add(name, set.Device, data)
				if err := lib.Save(path); err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Printf("saved %s (%s)\n", p.Name, p.ID)
				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Writes a preset back out as a config file",
			ArgsUsage: "<id-or-name>",
			Flags: []cli.Flag{
				libraryFlag,
				cli.StringFlag{
					Name:  "output, o",
					Usage: `Write to file instead of stdout`,
				},
			},
			Action: func(ctx *cli.Context) error {
				if ctx.NArg() < 1 {
					cli.ShowCommandHelp(ctx, "export")
					os.Exit(1)
				}
				lib, _, err := openLibrary(ctx)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				p := lib.Find(ctx.Args()[0])
				if p == nil {
					return cli.NewExitError(fmt.Errorf("no preset %q", ctx.Args()[0]), 1)
				}
				if out := ctx.String("output"); out != "" {
					if err := os.WriteFile(out, p.Document, 0644); err != nil {
						return cli.NewExitError(err, 1)
					}
					return nil
				}
				fmt.Print(string(p.Document))
				return nil
			},
		},
		{
			Name:      "use",
			Usage:     "Marks a preset as the working one",
			ArgsUsage: "<id-or-name>",
			Flags:     []cli.Flag{libraryFlag},
			Action: func(ctx *cli.Context) error {
				if ctx.NArg() < 1 {
					cli.ShowCommandHelp(ctx, "use")
					os.Exit(1)
				}
				lib, path, err := openLibrary(ctx)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				p := lib.Find(ctx.Args()[0])
				if p == nil {
					return cli.NewExitError(fmt.Errorf("no preset %q", ctx.Args()[0]), 1)
				}
				lib.SetCurrent(p.ID)
				if err := lib.Save(path); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
		{
			Name:      "rm",
			Usage:     "Deletes a preset",
			ArgsUsage: "<id-or-name>",
			Flags:     []cli.Flag{libraryFlag},
			Action: func(ctx *cli.Context) error {
				if ctx.NArg() < 1 {
					cli.ShowCommandHelp(ctx, "rm")
					os.Exit(1)
				}
				lib, path, err := openLibrary(ctx)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				p := lib.Find(ctx.Args()[0])
				if p == nil {
					return cli.NewExitError(fmt.Errorf("no preset %q", ctx.Args()[0]), 1)
				}
				lib.Remove(p.ID)
				if err := lib.Save(path); err != nil {
					return cli.NewExitError(err, 1)
				}
				return nil
			},
		},
	},
}

var portsCmd = cli.Command{
	Name:  "ports",
	Usage: "Lists available MIDI ports",
	Action: func(ctx *cli.Context) error {
		m := midi.NewManager()
		defer m.Close()
		fmt.Println("inputs:")
		for _, name := range m.ListInPorts() {
			fmt.Printf("  %s\n", name)
		}
		fmt.Println("outputs:")
		for _, name := range m.ListOutPorts() {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

var monitorCmd = cli.Command{
	Name:      "monitor",
	Aliases:   []string{"m"},
	Usage:     "Prints incoming MIDI, resolved against a config when given",
	ArgsUsage: "[config.json]",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "port, p",
			Usage: `Input port name (exact or substring)`,
		},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.String("port") == "" {
			cli.ShowCommandHelp(ctx, "monitor")
			os.Exit(1)
		}
		m := midi.NewManager()
		defer m.Close()

		var stop func()
		var err error
		if ctx.NArg() > 0 {
			set, _, lerr := loadSet(ctx.Args()[0], "")
			if lerr != nil {
				return cli.NewExitError(lerr, 1)
			}
			router := midi.NewRouter(set)
			stop, err = m.Listen(ctx.String("port"), router, func(fb midi.Feedback) {
				fmt.Printf("%-16s value %3d on=%v\n", fb.Identity, fb.Value, fb.On)
			})
		} else {
			stop, err = m.Monitor(ctx.String("port"), func(msg gomidi.Message, timestampms int32) {
				fmt.Printf("%8dms %s\n", timestampms, msg)
			})
		}
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		return nil
	},
}

var sendCmd = cli.Command{
	Name:      "send",
	Usage:     "Sends the messages one control press would emit",
	ArgsUsage: "<config.json> <control>",
	Description: `The control argument is a path into the config: buttons[3], encoder,
   encoder.push (or just push), expression.exp1 (or exp1, exp2).`,
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "port, p",
			Usage: `Output port name (exact or substring)`,
		},
		cli.BoolFlag{
			Name:  "release, r",
			Usage: `Follow the press with a release`,
		},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() < 2 || ctx.String("port") == "" {
			cli.ShowCommandHelp(ctx, "send")
			os.Exit(1)
		}
		set, _, err := loadSet(ctx.Args()[0], "")
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		id, err := control.ParseIdentity(ctx.Args()[1])
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		perf := midi.NewPerformer(set)
		msgs := perf.Press(id)
		if ctx.Bool("release") {
			msgs = append(msgs, perf.Release(id)...)
		}
		if len(msgs) == 0 {
			return cli.NewExitError(fmt.Errorf("%s emits nothing", id), 1)
		}
		m := midi.NewManager()
		defer m.Close()
		if err := m.Send(ctx.String("port"), msgs...); err != nil {
			return cli.NewExitError(err, 1)
		}
		for _, msg := range msgs {
			fmt.Println(msg)
		}
		return nil
	},
}

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "Watches for controller volumes and optionally deploys a config",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "deploy, d",
			Usage: `Config file to write onto each connected controller`,
		},
	},
	Action: func(ctx *cli.Context) error {
		var deploy *control.Set
		var display []byte
		if path := ctx.String("deploy"); path != "" {
			set, doc, err := loadSet(path, "")
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			deploy = set
			display = doc.Display
		}

		w, err := device.NewWatcher()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer w.Close()

		runCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		go func() {
			<-sig
			cancel()
		}()
		go w.Run(runCtx)

		for ev := range w.Events() {
			fmt.Printf("%s %s (%s)\n", ev.Type, ev.Mount.Name, ev.Mount.Path)
			if ev.Type == device.Connected && deploy != nil {
				if err := config.WriteFile(ev.Mount.ConfigPath, deploy, display); err != nil {
					fmt.Fprintf(os.Stderr, "deploy failed: %v\n", err)
					continue
				}
				fmt.Printf("wrote %s\n", ev.Mount.ConfigPath)
			}
		}
		return nil
	},
}

var devicesCmd = cli.Command{
	Name:  "devices",
	Usage: "Lists supported device models",
	Action: func(ctx *cli.Context) error {
		for _, v := range device.Variants() {
			rows, cols := v.GridSize()
			features := []string{
				fmt.Sprintf("%d switches", v.ButtonCount()),
				fmt.Sprintf("%d leds", v.LEDCount()),
			}
			if v.HasEncoder() {
				features = append(features, "encoder")
			}
			if v.HasExpression() {
				features = append(features, "expression x2")
			}
			fmt.Printf("%-7s %dx%d grid, %s\n", v, rows, cols, strings.Join(features, ", "))
		}
		return nil
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "captain-config"
	app.Version = version
	app.Usage = "Manages configs for MIDI Captain foot controllers"
	app.Authors = []cli.Author{
		{
			Name: "mcascone",
		},
	}
	app.HelpName = "captain-config"

	app.Commands = []cli.Command{
		validateCmd,
		normalizeCmd,
		showCmd,
		initCmd,
		presetCmd,
		portsCmd,
		monitorCmd,
		sendCmd,
		watchCmd,
		devicesCmd,
	}

	app.Action = func(ctx *cli.Context) error {
		cli.ShowAppHelp(ctx)
		return nil
	}

	app.Run(os.Args)
}
