package segment

import (
	"path/filepath"
	"strings"
)

// DefaultOutputName is the output filename used when the caller does not choose one
const DefaultOutputName = "output.mp3"

// Request represents a request to cut one time range out of a remote asset's audio
type Request struct {
	SourceURL  string
	Start      Marker
	End        Marker
	OutputPath string
}

// NewRequest creates a Request. Only presence of the URL and both markers is checked;
// the markers are handed to the trimmer untouched.
func NewRequest(sourceURL, start, end, outputPath string) (*Request, error) {
	if strings.TrimSpace(sourceURL) == "" || strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil, &Error{Kind: KindValidation, Err: ErrMissingParameters}
	}

	if outputPath == "" {
		outputPath = DefaultOutputName
	}

	return &Request{
		SourceURL:  sourceURL,
		Start:      Marker(start),
		End:        Marker(end),
		OutputPath: outputPath,
	}, nil
}

// OutputDir returns the directory the output file will be written into
func (r *Request) OutputDir() string {
	return filepath.Dir(r.OutputPath)
}

// IntermediateName returns the filename of the full downloaded asset for the given audio format
func IntermediateName(audioFormat string) string {
	if audioFormat == "" {
		audioFormat = "mp3"
	}
	return "full_audio." + audioFormat
}
