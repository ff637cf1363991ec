package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// FilesystemOutput dumps every request/response pair a client sees into a
// directory, one numbered file per exchange. Debug tooling; wire it up
// with DumpToFilesystem when chasing a scraper regression.
type FilesystemOutput struct {
	directory string
	idcounter *uint64
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	os.RemoveAll(dir)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		panic(err)
	}
	var idcounter uint64
	return FilesystemOutput{directory: dir, idcounter: &idcounter}
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// DumpToFilesystem registers an after-response hook writing every exchange
// the client completes to the output directory.
func DumpToFilesystem(client *resty.Client, out FilesystemOutput) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(out.idcounter, 1)
		out.Write(fmt.Sprint(id), FormatHttpMessage(res))
		return nil
	})
}
