package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/9seconds/geoweblog/providers"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeDataset(fs afero.Fs, conf configDataset, log geolib.Logger) (geolib.Dataset, error) {
	path, err := filepath.Abs(conf.Path)
	if err != nil {
		return nil, geolib.NewDatasetLoadError(conf.Path, err)
	}

	// Each loaded instance gets its own cache.
	loader := func() (geolib.Dataset, error) {
		dataset, err := providers.Open(fs, conf.GetKind(), path)
		if err != nil {
			return nil, err
		}

		named := geolib.WithName(dataset, conf.GetName())

		if conf.CacheItems == 0 {
			return named, nil
		}

		cached, err := geolib.NewCachingDataset(named, conf.CacheItems, conf.GetCacheTTL())
		if err != nil {
			named.Close()

			return nil, fmt.Errorf("cannot create cache for %s: %w", conf.GetName(), err)
		}

		return cached, nil
	}

	if !conf.Watch {
		return loader()
	}

	watching, err := geolib.NewWatchingDataset(path, loader, log)
	if err != nil {
		return nil, err
	}

	return watching, nil
}

func makeDatasets(fs afero.Fs, conf *config, log geolib.Logger) ([]geolib.Dataset, error) {
	if err := conf.requireDatasets(); err != nil {
		return nil, err
	}

	rv := make([]geolib.Dataset, 0, len(conf.GetDatasets()))

	for _, v := range conf.GetDatasets() {
		dataset, err := makeDataset(fs, v, log)
		if err != nil {
			for _, opened := range rv {
				opened.Close()
			}

			return nil, err
		}

		log.UpdateInfo(dataset.Name(), "dataset was loaded")

		rv = append(rv, dataset)
	}

	return rv, nil
}

func makeEnricher(fs afero.Fs, conf *config, log geolib.Logger) (*geolib.Enricher, error) {
	datasets, err := makeDatasets(fs, conf, log)
	if err != nil {
		return nil, err
	}

	enricher, err := geolib.NewEnricher(datasets, log, conf.GetWorkerPoolSize())
	if err != nil {
		for _, v := range datasets {
			v.Close()
		}

		return nil, fmt.Errorf("cannot create enricher: %w", err)
	}

	return enricher, nil
}

// askYesNo asks a question until it gets an answer. First character
// decides, empty answer or EOF means defaultAnswer.
func askYesNo(in *bufio.Reader, out io.Writer, question string, defaultAnswer bool) bool {
	hint := "[y/N]"
	if defaultAnswer {
		hint = "[Y/n]"
	}

	for {
		fmt.Fprintf(out, "%s %s: ", question, hint)

		line, err := in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))

		switch {
		case answer == "":
			return defaultAnswer
		case answer[0] == 'y':
			return true
		case answer[0] == 'n':
			return false
		}

		if err != nil {
			return defaultAnswer
		}

		fmt.Fprintln(out, "Please answer yes or no")
	}
}

func askValue(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	line, err := in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", fmt.Errorf("cannot read %s: %w", strings.TrimSuffix(prompt, ":"), err)
	}

	return strings.TrimSpace(line), nil
}

// askPassword reads a value without echo if fd is a terminal. Otherwise
// it is read as a plain line from in.
func askPassword(in *bufio.Reader, out io.Writer, prompt string, fd int) (string, error) {
	if !term.IsTerminal(fd) {
		return askValue(in, out, prompt)
	}

	fmt.Fprint(out, prompt)

	value, err := term.ReadPassword(fd)

	fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", strings.TrimSuffix(prompt, ":"), err)
	}

	return strings.TrimSpace(string(value)), nil
}
