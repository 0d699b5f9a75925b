// Package export renders per-kid summary projections as CSV artifacts and
// stores them in object storage, handing back a presigned download URL.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campboard/campboard/internal/schedule"
	"github.com/campboard/campboard/pkg/logger"
)

// presignTTL is how long an export download link stays valid.
const presignTTL = 15 * time.Minute

// ObjectStore is the object-storage surface the exporter needs; satisfied by
// storage.MinIOStorage.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Exporter writes summary CSVs to object storage. When a records collection
// is configured, each generated artifact is also tracked for auditing.
type Exporter struct {
	objects ObjectStore
	records *mongo.Collection
}

func NewExporter(objects ObjectStore, records *mongo.Collection) *Exporter {
	return &Exporter{objects: objects, records: records}
}

// SummaryCSV renders the kid's itinerary from the document, uploads it and
// returns the object key and a presigned URL.
func (e *Exporter) SummaryCSV(ctx context.Context, d *schedule.Document, kid string) (key, url string, err error) {
	body := RenderSummaryCSV(d, kid)
	key = fmt.Sprintf("summaries/%s/%s-%d.csv", d.ID, sanitize(kid), time.Now().UTC().Unix())
	if err := e.objects.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "text/csv"); err != nil {
		return "", "", fmt.Errorf("upload summary: %w", err)
	}
	url, err = e.objects.GetPresignedURL(ctx, key, presignTTL)
	if err != nil {
		return "", "", fmt.Errorf("presign summary: %w", err)
	}
	rec := &Record{ScheduleID: d.ID, Kid: kid, ObjectKey: key}
	if err := SaveRecord(ctx, e.records, rec); err != nil {
		// the artifact exists and the link works; losing the audit row is not
		// worth failing the export
		logger.Warnf("export record for %s not saved: %v", key, err)
	}
	return key, url, nil
}

// RenderSummaryCSV produces the CSV bytes for one kid's summary. Pure; the
// same document and kid always render identical bytes.
func RenderSummaryCSV(d *schedule.Document, kid string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"week", "starts", "camp", "with"})
	for _, wk := range schedule.Summarize(d, kid) {
		camp := wk.Camp
		if !wk.Attending {
			camp = "(no camp)"
		}
		_ = w.Write([]string{
			strconv.Itoa(wk.WeekIndex + 1),
			wk.Label,
			camp,
			strings.Join(wk.CoKids, "; "),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
