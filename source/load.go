package source

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/logger"
)

// LoadDocuments reads every entry's full text concurrently and pairs it
// positionally with the entry's metadata (stable zip, not merge). A read
// failure on any one file is fatal for the whole build.
func LoadDocuments(ctx context.Context, entries []FileEntry) ([]Document, error) {
	docs := make([]Document, len(entries))

	g, _ := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			text, err := os.ReadFile(entry.IDLPath)
			if err != nil {
				return errors.Wrapf(err, "failed to read IDL file %q", entry.IDLPath)
			}
			docs[i] = Document{
				Path:          entry.IDLPath,
				Text:          string(text),
				ImplDir:       entry.ImplDir,
				OutputSubpath: entry.OutputSubpath,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Logger.Infow("loaded IDL documents",
		logger.FieldPhase, "load",
		logger.FieldCount, len(docs))
	return docs, nil
}
