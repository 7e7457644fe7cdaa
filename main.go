package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/wifiproxy/wifiproxy/internal/config"
	"github.com/wifiproxy/wifiproxy/internal/debug"
	"github.com/wifiproxy/wifiproxy/internal/link"
	"github.com/wifiproxy/wifiproxy/internal/log"
	"github.com/wifiproxy/wifiproxy/internal/tui"
	"github.com/wifiproxy/wifiproxy/wifi"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

const envPrefix = "WIFIPROXY"

// interfaceFlag registers -interface and its -i shorthand on fs.
func interfaceFlag(fs *flag.FlagSet) *string {
	var iface string
	fs.StringVar(&iface, "interface", "", "wifi interface to use; defaults to the first USB adapter (env: WIFIPROXY_INTERFACE)")
	fs.StringVar(&iface, "i", "", "shorthand for -interface")
	return &iface
}

func newCommand(name, usage, help string, fs *flag.FlagSet, exec func(context.Context, []string) error) *ffcli.Command {
	return &ffcli.Command{
		Name:       name,
		ShortUsage: "wifi-proxy " + usage,
		ShortHelp:  help,
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:       exec,
	}
}

func main() {
	// A .env next to the project feeds the WIFIPROXY_ variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error loading .env: %v\n", err)
		os.Exit(1)
	}

	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = "wifi-proxy.toml"
	}

	var (
		rootFlagSet = flag.NewFlagSet("wifi-proxy", flag.ExitOnError)
		configPath  = rootFlagSet.String("config", defaultConfig, "path to the saved networks file (env: WIFIPROXY_CONFIG)")
		backendKind = rootFlagSet.String("backend", "nmcli", "network daemon backend: nmcli or dbus (env: WIFIPROXY_BACKEND)")
		theme       = rootFlagSet.String("theme", "", "path to theme toml file (env: WIFIPROXY_THEME)")
		debugLog    = rootFlagSet.String("debug-log", "", "write logs to this file while the TUI is running (env: WIFIPROXY_DEBUG_LOG)")
		verbose     = rootFlagSet.Bool("verbose", false, "log debug messages")
		version     = rootFlagSet.Bool("version", false, "display version")
		rootIface   = interfaceFlag(rootFlagSet)
	)

	e := &env{out: os.Stdout}
	var backend wifi.Backend
	e.backend = func() (wifi.Backend, error) {
		if backend != nil {
			return backend, nil
		}
		b, err := GetBackend(*backendKind)
		if err != nil {
			return nil, err
		}
		backend = b
		return b, nil
	}

	listFlagSet := flag.NewFlagSet("list-interfaces", flag.ExitOnError)
	listCmd := newCommand("list-interfaces", "list-interfaces", "List wifi interfaces and whether they are USB", listFlagSet,
		func(ctx context.Context, args []string) error {
			return runListInterfaces(e)
		})

	scanFlagSet := flag.NewFlagSet("scan", flag.ExitOnError)
	scanIface := interfaceFlag(scanFlagSet)
	scanCmd := newCommand("scan", "scan [-i iface]", "Scan for wifi networks", scanFlagSet,
		func(ctx context.Context, args []string) error {
			return runScan(e, *scanIface)
		})

	connectFlagSet := flag.NewFlagSet("connect", flag.ExitOnError)
	connectIface := interfaceFlag(connectFlagSet)
	connectPassword := connectFlagSet.String("password", "", "password for the network; defaults to the saved one")
	connectFlagSet.StringVar(connectPassword, "p", "", "shorthand for -password")
	connectSave := connectFlagSet.Bool("save", false, "save the credentials after connecting")
	connectFlagSet.BoolVar(connectSave, "s", false, "shorthand for -save")
	connectCmd := newCommand("connect", "connect [-p password] [-s] [-i iface] <ssid>", "Connect to a wifi network", connectFlagSet,
		func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("connect requires an ssid")
			}
			passwordSet := false
			connectFlagSet.Visit(func(f *flag.Flag) {
				if f.Name == "password" || f.Name == "p" {
					passwordSet = true
				}
			})
			return runConnect(e, args[0], *connectPassword, passwordSet, *connectIface, *connectSave)
		})

	statusFlagSet := flag.NewFlagSet("status", flag.ExitOnError)
	statusIface := interfaceFlag(statusFlagSet)
	statusCmd := newCommand("status", "status [-i iface]", "Show the connection status", statusFlagSet,
		func(ctx context.Context, args []string) error {
			if c, err := link.Open(); err == nil {
				defer c.Close()
				e.links = c
			} else {
				slog.Debug("link details unavailable", "err", err)
			}
			return runStatus(e, *statusIface)
		})

	disconnectFlagSet := flag.NewFlagSet("disconnect", flag.ExitOnError)
	disconnectIface := interfaceFlag(disconnectFlagSet)
	disconnectCmd := newCommand("disconnect", "disconnect [-i iface]", "Disconnect the interface", disconnectFlagSet,
		func(ctx context.Context, args []string) error {
			return runDisconnect(e, *disconnectIface)
		})

	forgetFlagSet := flag.NewFlagSet("forget", flag.ExitOnError)
	forgetCmd := newCommand("forget", "forget <name>", "Delete a connection profile and its saved credentials", forgetFlagSet,
		func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("forget requires a connection name")
			}
			return runForget(e, args[0])
		})

	fetchFlagSet := flag.NewFlagSet("fetch-gateway", flag.ExitOnError)
	fetchIface := interfaceFlag(fetchFlagSet)
	fetchOutput := fetchFlagSet.String("output", "gateway.html", "file to save the page to")
	fetchFlagSet.StringVar(fetchOutput, "o", "gateway.html", "shorthand for -output")
	fetchURL := fetchFlagSet.String("url", "", "url to fetch instead of the gateway's root page")
	fetchFlagSet.StringVar(fetchURL, "u", "", "shorthand for -url")
	fetchCmd := newCommand("fetch-gateway", "fetch-gateway [-o file] [-u url] [-i iface]", "Save the gateway's web page", fetchFlagSet,
		func(ctx context.Context, args []string) error {
			return runFetchGateway(ctx, e, *fetchIface, *fetchURL, *fetchOutput)
		})

	serveFlagSet := flag.NewFlagSet("serve", flag.ExitOnError)
	serveIface := interfaceFlag(serveFlagSet)
	servePort := serveFlagSet.Int("port", 8080, "local port to listen on (env: WIFIPROXY_PORT)")
	serveCmd := newCommand("serve", "serve [-port n] [-i iface]", "Proxy the gateway's control page and stream", serveFlagSet,
		func(ctx context.Context, args []string) error {
			return runServe(ctx, e, *serveIface, *servePort)
		})

	saveFlagSet := flag.NewFlagSet("save-network", flag.ExitOnError)
	saveIface := interfaceFlag(saveFlagSet)
	savePassword := saveFlagSet.String("password", "", "password for the network")
	saveFlagSet.StringVar(savePassword, "p", "", "shorthand for -password")
	saveCmd := newCommand("save-network", "save-network -p password [-i iface] <ssid>", "Save network credentials without connecting", saveFlagSet,
		func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("save-network requires an ssid")
			}
			return runSaveNetwork(e, args[0], *savePassword, *saveIface)
		})

	showConfigCmd := newCommand("show-config", "show-config", "Show saved networks with masked passwords", flag.NewFlagSet("show-config", flag.ExitOnError),
		func(ctx context.Context, args []string) error {
			return runShowConfig(e)
		})

	shareCmd := newCommand("share", "share <ssid>", "Show a QR code for joining a saved network", flag.NewFlagSet("share", flag.ExitOnError),
		func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("share requires an ssid")
			}
			return runShare(e, args[0])
		})

	tuiFlagSet := flag.NewFlagSet("tui", flag.ExitOnError)
	tuiIface := interfaceFlag(tuiFlagSet)
	startTUI := func(iface string) error {
		// The TUI owns the terminal, so logs go to the debug file or nowhere.
		var w io.Writer = io.Discard
		if *debugLog != "" {
			f, err := debug.Open(*debugLog)
			if err != nil {
				return fmt.Errorf("open debug log: %w", err)
			}
			defer f.Close()
			w = f
		}
		log.Init(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
		return runTUI(e, iface)
	}
	tuiCmd := newCommand("tui", "tui [-i iface]", "Pick a network interactively", tuiFlagSet,
		func(ctx context.Context, args []string) error {
			iface := *tuiIface
			if iface == "" {
				iface = *rootIface
			}
			return startTUI(iface)
		})

	root := &ffcli.Command{
		ShortUsage: "wifi-proxy [flags] <subcommand> [args...]",
		FlagSet:    rootFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Subcommands: []*ffcli.Command{
			listCmd, scanCmd, connectCmd, statusCmd, disconnectCmd, forgetCmd,
			fetchCmd, serveCmd, saveCmd, showConfigCmd, shareCmd, tuiCmd,
		},
		Exec: func(ctx context.Context, args []string) error {
			return startTUI(*rootIface)
		},
	}

	if err := root.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *version {
		fmt.Println(Version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log.Init(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := tui.LoadThemeFile(*theme); err != nil {
		fmt.Fprintf(os.Stderr, "error loading theme: %v\n", err)
		os.Exit(1)
	}

	e.configPath = *configPath

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if hint := describeError(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}
