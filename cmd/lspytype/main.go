package main

import (
	"io"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp/server"
	kcobra "github.com/tliron/kutil/cobra"
	"github.com/tliron/kutil/version"

	"github.com/tminor/lspytype/config"
	"github.com/tminor/lspytype/implementation"
)

const toolName = "lspytype"

var log = logging.MustGetLogger("lspytype")

var (
	configPath string
	logPath    string
	verbose    int
	tcp        string
	websocket  string
)

func main() {
	command := newRootCommand()
	command.AddCommand(kcobra.NewVersionCommand(toolName))
	kcobra.SetFlagsFromEnvironment("LSPYTYPE_", command)

	if err := command.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:          toolName,
		Short:        "Python variable type language server",
		Long:         "Serves the type of the Python variable under the caret as a status bar widget, plus hover, definition and document symbols.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	flags := command.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "configuration file (Jsonnet or JSON)")
	flags.StringVarP(&logPath, "log", "l", "", "log to file instead of stderr")
	flags.CountVarP(&verbose, "verbose", "v", "add verbosity (repeatable)")
	flags.StringVar(&tcp, "tcp", "", "listen on a TCP address instead of stdio")
	flags.StringVar(&websocket, "websocket", "", "listen on a WebSocket address instead of stdio")
	return command
}

func serve() error {
	configuration, err := config.Load(configPath, verbose)
	if err != nil {
		return err
	}

	output, err := openLog()
	if err != nil {
		return err
	}
	if err := configureLogging(output, configuration); err != nil {
		return err
	}

	implementation.Configure(configuration)
	if version.GitVersion != "" {
		implementation.Version = version.GitVersion
	}

	s := server.NewServer(implementation.NewHandler(), toolName, verbose > 1)
	switch {
	case tcp != "":
		log.Infof("listening on tcp %s", tcp)
		return s.RunTCP(tcp)
	case websocket != "":
		log.Infof("listening on websocket %s", websocket)
		return s.RunWebSocket(websocket)
	default:
		return s.RunStdio()
	}
}

// openLog never returns stdout: it carries the protocol in stdio mode.
func openLog() (io.Writer, error) {
	if logPath == "" {
		return os.Stderr, nil
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening log file %s", logPath)
	}
	atexit.Register(func() {
		file.Close()
	})
	return file, nil
}

func configureLogging(output io.Writer, configuration *config.Config) error {
	level, err := configuration.Level()
	if err != nil {
		return err
	}

	backend := logging.NewLogBackend(output, "", 0)
	formatter := logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} [%{module}] %{message}`)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, formatter))
	if verbose > 0 {
		level = logging.DEBUG
	}
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)

	// glsp logs through commonlog.
	if logPath != "" {
		commonlog.Configure(verbose, &logPath)
	} else {
		commonlog.Configure(verbose, nil)
	}
	return nil
}
