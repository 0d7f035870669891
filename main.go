package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/sing-box-orbit/sing-box-orbit-back/bootstrap"
	"github.com/sing-box-orbit/sing-box-orbit-back/config"
	"github.com/sing-box-orbit/sing-box-orbit-back/database"
	"github.com/sing-box-orbit/sing-box-orbit-back/logger"
)

// runServer 是主执行函数，使用 bootstrap 模块简化启动流程
func runServer() {
	app, err := bootstrap.Initialize()
	if err != nil {
		log.Fatalf("Error initializing application: %v", err)
	}
	defer func() { _ = database.CloseDB() }()

	runtime := bootstrap.NewRuntime(app)

	if err := runtime.StartWebServer(); err != nil {
		log.Fatalf("Error starting web server: %v", err)
	}

	if err := runtime.StartSubServer(); err != nil {
		log.Fatalf("Error starting sub server: %v", err)
	}

	runtime.StartJobs()

	sigCh := make(chan os.Signal, 1)
	setupSignalHandler(sigCh)

	for {
		sig := <-sigCh

		if handleCustomSignal(sig, runtime.JobManager) {
			continue
		}

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting servers...")
			if err := runtime.Restart(); err != nil {
				log.Fatalf("Error restarting: %v", err)
			}

		default:
			runtime.StopAll()
			log.Println("Shutting down servers.")
			return
		}
	}
}

func main() {
	if len(os.Args) < 2 {
		runServer()
		return
	}

	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "show version")

	runCmd := flag.NewFlagSet("run", flag.ExitOnError)

	oldUsage := flag.Usage
	flag.Usage = func() {
		oldUsage()
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("    run            run admin api and subscription server")
	}

	flag.Parse()
	if showVersion {
		fmt.Println(config.GetVersion())
		return
	}

	switch os.Args[1] {
	case "run":
		if err := runCmd.Parse(os.Args[2:]); err != nil {
			fmt.Println(err)
			return
		}
		runServer()
	default:
		fmt.Println("Invalid subcommand")
		fmt.Println()
		runCmd.Usage()
	}
}
