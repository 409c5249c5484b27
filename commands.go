package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/9seconds/geoweblog/export"
	"github.com/9seconds/geoweblog/geolib"
	"github.com/9seconds/geoweblog/weblog"
	"github.com/pires/go-proxyproto"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	formatCSV       = "csv"
	formatJSONLines = "jsonl"

	serverShutdownTimeout   = 10 * time.Second
	serverReadHeaderTimeout = 10 * time.Second
)

func runLookup(ctx context.Context, fs afero.Fs, conf *config, log geolib.Logger, out io.Writer) error {
	enricher, err := makeEnricher(fs, conf, log)
	if err != nil {
		return err
	}

	defer enricher.Shutdown()

	results, err := enricher.EnrichAll(ctx, *lookupAddresses)
	if err != nil {
		return fmt.Errorf("cannot lookup addresses: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)

	for _, v := range results {
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("cannot encode result: %w", err)
		}
	}

	return nil
}

func readEnrichedWeblog(ctx context.Context,
	fs afero.Fs,
	conf *config,
	log geolib.Logger,
	appLog zerolog.Logger,
	path string) ([]weblog.Record, error) {
	enricher, err := makeEnricher(fs, conf, log)
	if err != nil {
		return nil, err
	}

	defer enricher.Shutdown()

	records, readStats, err := weblog.NewReader(conf.Weblog).Read(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read weblog: %w", err)
	}

	appLog.Info().
		Str("path", path).
		Int("rows", readStats.Rows).
		Int("skipped", readStats.Skipped).
		Int("imputed", readStats.Imputed).
		Msg("Weblog was read")

	enrichStats, err := weblog.EnrichRecords(ctx, enricher, records)
	if err != nil {
		return nil, err
	}

	appLog.Info().
		Int("unique_addresses", enrichStats.Unique).
		Int("located", enrichStats.Located).
		Int("not_found", enrichStats.NotFound).
		Int("invalid", enrichStats.Invalid).
		Msg("Weblog was enriched")

	return records, nil
}

func runEnrich(ctx context.Context, fs afero.Fs, conf *config, log geolib.Logger, appLog zerolog.Logger) error {
	records, err := readEnrichedWeblog(ctx, fs, conf, log, appLog, *enrichInput)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout

	if *enrichOutput != "" && *enrichOutput != "-" {
		file, err := fs.Create(*enrichOutput)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}

		defer file.Close()

		out = file
	}

	writer := bufio.NewWriter(out)

	switch *enrichFormat {
	case formatJSONLines:
		err = weblog.WriteJSONLines(writer, records)
	default:
		err = weblog.WriteCSV(writer, records)
	}

	if err != nil {
		return err
	}

	return writer.Flush()
}

func runReport(ctx context.Context, fs afero.Fs, conf *config, log geolib.Logger, appLog zerolog.Logger) error {
	records, err := readEnrichedWeblog(ctx, fs, conf, log, appLog, *reportInput)
	if err != nil {
		return err
	}

	if *reportCountry != "" {
		records = weblog.FilterCountry(records, *reportCountry)
	}

	measure, err := weblog.ParseMeasure(*reportMeasure)
	if err != nil {
		return err
	}

	report, err := weblog.BuildReport(records, weblog.ReportOptions{
		Top:       *reportTop,
		Interval:  *reportInterval,
		Window:    *reportWindow,
		Measure:   measure,
		Deviation: weblog.Measure(*reportDeviation),
		IQRFactor: *reportIQRFactor,
	})
	if err != nil {
		return fmt.Errorf("cannot build report: %w", err)
	}

	if *reportJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(report)
	}

	return report.WriteText(os.Stdout)
}

func runServe(ctx context.Context, fs afero.Fs, conf *config, log geolib.Logger, appLog zerolog.Logger) error {
	enricher, err := makeEnricher(fs, conf, log)
	if err != nil {
		return err
	}

	defer enricher.Shutdown()

	handler := geolib.NewHTTPHandler(enricher)

	if conf.BasicAuth.Enabled() {
		handler = basicAuth(conf.BasicAuth.User, conf.BasicAuth.Password)(handler)
	}

	listener, err := net.Listen("tcp", conf.GetListen())
	if err != nil {
		return fmt.Errorf("cannot start listener: %w", err)
	}

	if conf.ProxyProtocol {
		listener = &proxyproto.Listener{Listener: listener}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: serverReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()

		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	appLog.Info().
		Str("listen", listener.Addr().String()).
		Bool("proxy_protocol", conf.ProxyProtocol).
		Msg("Start HTTP server")

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server has been crashed: %w", err)
	}

	return nil
}

func runDownload(ctx context.Context,
	fs afero.Fs,
	conf *config,
	in *bufio.Reader,
	out io.Writer,
	appLog zerolog.Logger) error {
	if !*downloadYes && !askYesNo(in, out, "Do you want to download new data?", false) {
		return nil
	}

	username := *downloadUsername
	password := *downloadPassword

	var err error

	if username == "" {
		if username, err = askValue(in, out, "Splunk username:"); err != nil {
			return err
		}
	}

	if password == "" {
		if password, err = askPassword(in, out, "Splunk password:", int(os.Stdin.Fd())); err != nil {
			return err
		}
	}

	splunk := &export.Splunk{
		Client:      export.NewHTTPClient(nil, conf.Export.GetClientOptions()),
		Host:        conf.Export.Host,
		User:        conf.Export.User,
		App:         conf.Export.App,
		SavedSearch: conf.Export.SavedSearch,
		Username:    username,
		Password:    password,
	}

	appLog.Info().Str("url", splunk.URL(conf.Export.GetOutputType())).Msg("Trying to connect")

	path, err := splunk.Download(ctx, fs, conf.Export.GetDirectory(), *downloadName, conf.Export.GetOutputType())
	if err != nil {
		return err
	}

	appLog.Info().Str("path", path).Msg("Data was downloaded")

	return nil
}
