package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/flipsim/internal/dynamo"
)

type ExportData struct {
	Run    RunMetadata         `json:"run"`
	Frames []dynamo.FrameStats `json:"frames"`
}

// ExportJSON writes a run and its frames as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []dynamo.FrameStats) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Frames: frames})
}

// ExportCSV writes frames with a header row.
func ExportCSV(w io.Writer, frames []dynamo.FrameStats) error {
	return gocsv.Marshal(&frames, w)
}

// FrameWriter streams frames to a CSV writer as a run progresses. The
// header is written with the first frame.
type FrameWriter struct {
	w             io.Writer
	headerWritten bool
	err           error
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

func (fw *FrameWriter) OnStep(_ dynamo.Fluid, stats dynamo.FrameStats) {
	if fw.err != nil {
		return
	}
	records := []dynamo.FrameStats{stats}
	if !fw.headerWritten {
		fw.err = gocsv.Marshal(records, fw.w)
		fw.headerWritten = true
		return
	}
	fw.err = gocsv.MarshalWithoutHeaders(records, fw.w)
}

// Err returns the first write error, if any.
func (fw *FrameWriter) Err() error { return fw.err }

var _ dynamo.Observer = (*FrameWriter)(nil)
