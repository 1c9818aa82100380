package app

import (
	"github.com/urfave/cli/v2"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandConsole は対話型コンソールモードで起動することを示す。
	CommandConsole Command = "console"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// defaultPort はSERVER_PORT未設定時の待ち受けポート。
const defaultPort = "4567"

// NewCLI はサブコマンドを定義したcli.Appを返す。
// サブコマンドを省略した場合はserveとして動作する。
func NewCLI(env *Env) *cli.App {
	serve := func(c *cli.Context) error {
		return runServe(c.Context, env)
	}

	app := &cli.App{
		Name:      "ridebook",
		Usage:     "Ride booking API server and console",
		Reader:    env.Stdin,
		Writer:    env.Stdout,
		ErrWriter: env.Stderr,
		Action:    serve,
		Commands: []*cli.Command{
			{
				Name:   string(CommandServe),
				Usage:  "Start the HTTP API server",
				Action: serve,
			},
			{
				Name:  string(CommandConsole),
				Usage: "Start the interactive menu on stdin/stdout",
				Action: func(c *cli.Context) error {
					return runConsole(c.Context, env)
				},
			},
			{
				Name:  string(CommandHealthcheck),
				Usage: "Probe /health of a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Server port to probe",
						EnvVars: []string{"SERVER_PORT"},
						Value:   defaultPort,
					},
				},
				// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
				Action: func(c *cli.Context) error {
					return runHealthcheck(c.Context, c.String("port"))
				},
			},
		},
	}

	return app
}
