// cvpromote публикует content views Satellite и продвигает новые версии
// по lifecycle environments.
//
// Использование:
//
//	cvpromote [run] -s SERVER -u USER -p PASSWORD -c CV [-c CV ...] (-a | -l ENV [-l ENV ...])
//	cvpromote schedule --cron "0 2 * * *" [flags]
//
// Команды:
//
//	run       Один batch и выход (по умолчанию)
//	schedule  Batch по cron-расписанию
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/shaiso/cvpromote/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cli.NewRootCmd(version).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
