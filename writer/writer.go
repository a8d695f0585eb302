package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lukehollenback/exprobe/capability"
	"github.com/lukehollenback/exprobe/constants"
	"github.com/lukehollenback/exprobe/exchange"
	"github.com/lukehollenback/exprobe/metrics"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

const (
	TimestampLayout = "20060102_150405"

	// maxCollisions bounds the numeric suffixes tried before giving up on a file name.
	maxCollisions = 1000
)

//
// Config holds everything needed to construct a writer.
//
type Config struct {
	Dir     string
	Archive Archive
	Logger  *zap.SugaredLogger
	Now     func() time.Time
}

//
// Writer persists documents as pretty-printed JSON files in one output directory. It never
// overwrites an existing file.
//
type Writer struct {
	mu      sync.Mutex
	dir     string
	archive Archive
	sugar   *zap.SugaredLogger
	now     func() time.Time
}

//
// New instantiates a writer. The output directory is created lazily on the first write.
//
func New(cfg Config) *Writer {
	o := &Writer{
		dir:     cfg.Dir,
		archive: cfg.Archive,
		sugar:   cfg.Logger,
		now:     cfg.Now,
	}

	if o.dir == "" {
		o.dir = constants.DefaultResponsesDir
	}

	if o.sugar == nil {
		o.sugar = zap.NewNop().Sugar()
	}

	if o.now == nil {
		o.now = time.Now
	}

	return o
}

//
// Dir returns the output directory.
//
func (o *Writer) Dir() string {
	return o.dir
}

//
// Saved describes a document that made it to disk.
//
type Saved struct {
	Path       string
	Size       int64
	Archived   bool
	ArchiveErr error
}

//
// Large returns whether or not the file is big enough to warrant a warning.
//
func (o Saved) Large() bool {
	return o.Size > constants.LargeFileSize
}

//
// SizeLabel returns the file size in KB, or in MB for large files.
//
func (o Saved) SizeLabel() string {
	if o.Large() {
		return fmt.Sprintf("%.1f MB", float64(o.Size)/(1024*1024))
	}

	return fmt.Sprintf("%.1f KB", float64(o.Size)/1024)
}

//
// Metadata is the context block at the top of every document. Credentials never go in here.
//
type Metadata struct {
	Timestamp      string              `json:"timestamp"`
	Exchange       string              `json:"exchange"`
	Endpoint       string              `json:"endpoint,omitempty"`
	Description    string              `json:"description,omitempty"`
	APIVersion     string              `json:"api_version,omitempty"`
	RateLimit      int64               `json:"rate_limit,omitempty"`
	Sandbox        *bool               `json:"sandbox,omitempty"`
	TotalEndpoints int                 `json:"total_endpoints,omitempty"`
	Summary        *capability.Summary `json:"summary,omitempty"`
	RequestInfo    interface{}         `json:"request_info,omitempty"`
}

type responseDoc struct {
	Metadata Metadata    `json:"metadata"`
	Response interface{} `json:"response"`
}

type capabilitiesDoc struct {
	Metadata    Metadata               `json:"metadata"`
	RawHas      exchange.Has           `json:"raw_has_dictionary"`
	Categorized capability.Categorized `json:"categorized_endpoints"`
}

type endpointsDoc struct {
	Metadata       Metadata           `json:"metadata"`
	Endpoints      capability.Buckets `json:"endpoints"`
	TotalEndpoints int                `json:"total_endpoints"`
}

//
// WriteResponse persists the result of one endpoint invocation together with the (non-secret)
// request details.
//
func (o *Writer) WriteResponse(ctx context.Context, exchangeID string, endpoint string, request interface{}, result interface{}) (Saved, error) {
	//
	// Values that cannot be encoded are kept in their printed form rather than losing the response.
	//
	if _, err := json.Marshal(result); err != nil {
		o.sugar.Warnw("response is not JSON encodable, saving its printed form", "endpoint", endpoint, "error", err)

		result = fmt.Sprintf("%v", result)
	}

	doc := responseDoc{
		Metadata: Metadata{
			Timestamp:   o.timestamp(),
			Exchange:    exchangeID,
			Endpoint:    endpoint,
			RequestInfo: request,
		},
		Response: result,
	}

	return o.write(ctx, Response, exchangeID, endpoint, doc)
}

//
// WriteCapabilities persists an exchange's raw capability map together with its categorized report.
//
func (o *Writer) WriteCapabilities(ctx context.Context, info exchange.Info, has exchange.Has, report capability.Report) (Saved, error) {
	summary := report.Summary
	sandbox := info.Sandbox

	if has == nil {
		has = exchange.Has{}
	}

	doc := capabilitiesDoc{
		Metadata: Metadata{
			Timestamp:   o.timestamp(),
			Exchange:    info.ID,
			Description: "Endpoint capability and support information",
			APIVersion:  info.APIVersion,
			RateLimit:   info.RateLimit.Milliseconds(),
			Sandbox:     &sandbox,
			Summary:     &summary,
		},
		RawHas:      has,
		Categorized: report.Categorized,
	}

	return o.write(ctx, Capabilities, info.ID, "", doc)
}

//
// WriteEndpoints persists the grouped list of every endpoint a client exposes.
//
func (o *Writer) WriteEndpoints(ctx context.Context, exchangeID string, groups capability.Buckets) (Saved, error) {
	total := 0
	for _, g := range groups {
		total += len(g.Endpoints)
	}

	doc := endpointsDoc{
		Metadata: Metadata{
			Timestamp:      o.timestamp(),
			Exchange:       exchangeID,
			Description:    "Available endpoints information",
			TotalEndpoints: total,
		},
		Endpoints:      groups,
		TotalEndpoints: total,
	}

	return o.write(ctx, Endpoints, exchangeID, "", doc)
}

func (o *Writer) timestamp() string {
	return o.now().Format(time.RFC3339)
}

//
// write encodes the document and places it in a file whose name has never been used before.
//
func (o *Writer) write(ctx context.Context, kind Kind, exchangeID string, endpoint string, doc interface{}) (saved Saved, err error) {
	defer func() {
		metrics.ObserveSave(kind.String(), err)
	}()

	o.mu.Lock()
	defer o.mu.Unlock()

	//
	// Encode the document. HTML escaping is turned off so that symbols and descriptions read the way
	// the exchange sent them.
	//
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(doc); err != nil {
		return Saved{}, fmt.Errorf("failed to encode %s document: %w", kind, err)
	}

	b := pretty.Pretty(buf.Bytes())

	//
	// Make sure the output directory exists.
	//
	if err := os.MkdirAll(o.dir, 0755); err != nil {
		return Saved{}, fmt.Errorf("failed to create output directory %s: %w", o.dir, err)
	}

	//
	// Create the output file, adding a numeric suffix whenever the name is already taken.
	//
	base := FileName(kind, exchangeID, endpoint, o.now())

	f, path, err := o.create(base)
	if err != nil {
		return Saved{}, err
	}

	if _, err := f.Write(b); err != nil {
		_ = f.Close()

		return Saved{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return Saved{}, fmt.Errorf("failed to close %s: %w", path, err)
	}

	saved = Saved{Path: path, Size: int64(len(b))}

	if info, err := os.Stat(path); err == nil {
		saved.Size = info.Size()
	}

	o.sugar.Infow("saved document", "kind", kind.String(), "exchange", exchangeID, "path", path, "bytes", saved.Size)

	//
	// Mirror the document into the archive if there is one. Failing to do so does not undo the save.
	//
	if o.archive != nil {
		if err := o.archive.Store(ctx, kind, filepath.Base(path), b); err != nil {
			o.sugar.Warnw("failed to archive document", "path", path, "error", err)

			saved.ArchiveErr = err
		} else {
			saved.Archived = true
		}
	}

	return saved, nil
}

func (o *Writer) create(base string) (*os.File, string, error) {
	for i := 0; i < maxCollisions; i++ {
		name := base + ".json"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.json", base, i)
		}

		path := filepath.Join(o.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create %s: %w", path, err)
		}
	}

	return nil, "", fmt.Errorf("failed to find a free file name for %s", base)
}

//
// FileName returns the name (without extension or collision suffix) of a document written at the
// provided time, e.g. "exprobe_response_kraken_fetchTicker_20240101_120000".
//
func FileName(kind Kind, exchangeID string, endpoint string, at time.Time) string {
	parts := []string{constants.AppName, kind.String(), sanitize(exchangeID)}
	if endpoint != "" {
		parts = append(parts, sanitize(endpoint))
	}

	parts = append(parts, at.Format(TimestampLayout))

	return strings.Join(parts, "_")
}

func sanitize(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_").Replace(s)
}
