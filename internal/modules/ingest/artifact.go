package ingest

import (
	"archive/zip"
	"bytes"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
)

// ImageFile is one embedded image extracted from a parse artifact.
type ImageFile struct {
	Name string
	Data []byte
	Mime string
}

// Artifact is the content of a completed parse job: the extracted markdown
// plus any embedded images.
type Artifact struct {
	Markdown string
	Images   []ImageFile
}

// extractArtifact unpacks a parse-service ZIP: the first .md member becomes
// the markdown text, every member under images/ becomes an image asset
// keyed by its base filename.
func extractArtifact(raw []byte) (*Artifact, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{}
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		name := member.Name

		switch {
		case artifact.Markdown == "" && strings.HasSuffix(name, ".md"):
			data, err := readZipMember(member)
			if err != nil {
				return nil, err
			}
			artifact.Markdown = string(data)

		case strings.Contains(name, "images/"):
			data, err := readZipMember(member)
			if err != nil {
				return nil, err
			}
			base := path.Base(name)
			artifact.Images = append(artifact.Images, ImageFile{
				Name: base,
				Data: data,
				Mime: detectImageMime(base, data),
			})
		}
	}
	return artifact, nil
}

func readZipMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func detectImageMime(name string, data []byte) string {
	if ext := path.Ext(name); ext != "" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			return guessed
		}
	}
	return http.DetectContentType(data)
}
