/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Command bpmnd wires every layer of the engine together: config,
// structured logging, the BadgerDB-backed store, the shared timer
// wheel, the process manager, and the REST façade in front of it.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bpmn-runtime/internal/config"
	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/handler"
	"bpmn-runtime/internal/manager"
	"bpmn-runtime/internal/restapi"
	"bpmn-runtime/internal/store"
	"bpmn-runtime/internal/timerwheel"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	if err := corelog.Init(&cfg.Logger); err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer corelog.Close()

	corelog.Info("starting bpmn-runtime", corelog.String("instance", cfg.InstanceName))

	st, err := store.Open(cfg.Store.Directory)
	if err != nil {
		corelog.Fatal("opening persistence store", corelog.Any("error", err))
	}
	defer st.Close()

	wheel, err := timerwheel.New(timerwheel.Config{
		Levels: []timerwheel.LevelConfig{
			{Tick: time.Duration(cfg.Engine.TimerWheelResolutionMS) * time.Millisecond, Size: cfg.Engine.TimerWheelSlots},
			{Tick: time.Duration(cfg.Engine.TimerWheelResolutionMS) * time.Millisecond * time.Duration(cfg.Engine.TimerWheelSlots), Size: cfg.Engine.TimerWheelSlots},
			{Tick: time.Hour, Size: 24 * 366},
		},
	}, nil)
	if err != nil {
		corelog.Fatal("constructing timer wheel", corelog.Any("error", err))
	}
	if err := wheel.Start(); err != nil {
		corelog.Fatal("starting timer wheel", corelog.Any("error", err))
	}
	defer wheel.Stop()

	mgr := manager.New(st, wheel, nil)

	if cfg.Engine.HandlerModulePath != "" {
		loadDefinitions(mgr, cfg.Engine.HandlerModulePath)
	}

	mgr.AfterInitialization(func() {
		if err := mgr.InitializationError(); err != nil {
			corelog.Error("engine initialization reported an error", corelog.Any("error", err))
			return
		}
		corelog.Info("engine initialization complete")
	})

	server := restapi.New(&restapi.Config{Host: cfg.RestAPI.Host, Port: cfg.RestAPI.Port}, mgr)
	if err := server.Start(); err != nil {
		corelog.Fatal("starting REST API server", corelog.Any("error", err))
	}

	waitForShutdown()

	if err := server.Stop(); err != nil {
		corelog.Error("stopping REST API server", corelog.Any("error", err))
	}
}

// loadDefinitions reads every *.bpmn file under dir and registers it
// with the manager, pairing it with a handler module of the same
// basename when one is compiled alongside it — a directory-convention
// loader in the same spirit as the engine's original process/handler
// pairing, generalized to whatever definitions config points at.
func loadDefinitions(mgr *manager.Manager, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		corelog.Error("reading handler module path", corelog.String("dir", dir), corelog.Any("error", err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isBpmnFile(entry.Name()) {
			continue
		}
		path := dir + "/" + entry.Name()
		data, err := os.ReadFile(path)
		if err != nil {
			corelog.Error("reading bpmn definition", corelog.String("path", path), corelog.Any("error", err))
			continue
		}

		var handlerSrc *handler.Source
		soPath := dir + "/" + trimExt(entry.Name()) + ".so"
		if _, err := os.Stat(soPath); err == nil {
			handlerSrc = &handler.Source{Kind: handler.SourceFilePath, Path: soPath}
		}

		if err := mgr.AddBpmnXML(data, handlerSrc); err != nil {
			corelog.Error("registering bpmn definition", corelog.String("path", path), corelog.Any("error", err))
		}
	}
}

func isBpmnFile(name string) bool {
	return len(name) > 5 && name[len(name)-5:] == ".bpmn"
}

func trimExt(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	corelog.Info("shutdown signal received")
}
