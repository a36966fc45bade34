package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
)

// Upload is a file received in a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}

// Request is a decoded write request.
type Request struct {
	Fields Payload
	Files  map[string]Upload
	// Form is true for multipart and urlencoded bodies.
	Form bool
}

// DecodeRequest reads a JSON, multipart or urlencoded body.
// An empty JSON body decodes to an empty payload.
func DecodeRequest(r *http.Request) (Request, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, MaxUploadSize)
		if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
			return Request{}, httpx.MalformedBody(httpx.FormatMultipart, err)
		}
		req := Request{Fields: Payload{}, Files: map[string]Upload{}, Form: true}
		for key, vals := range r.MultipartForm.Value {
			if len(vals) > 0 {
				req.Fields[key] = vals[len(vals)-1]
			}
		}
		for key, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			f, err := headers[0].Open()
			if err != nil {
				return Request{}, fmt.Errorf("open upload %s: %w", key, err)
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return Request{}, fmt.Errorf("read upload %s: %w", key, err)
			}
			req.Files[key] = Upload{Filename: headers[0].Filename, Data: data}
		}
		return req, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return Request{}, httpx.MalformedBody(httpx.FormatForm, err)
		}
		req := Request{Fields: Payload{}, Form: true}
		for key, vals := range r.PostForm {
			if len(vals) > 0 {
				req.Fields[key] = vals[len(vals)-1]
			}
		}
		return req, nil
	}

	fields := Payload{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return Request{Fields: Payload{}}, nil
		}
		return Request{}, httpx.MalformedBody(httpx.FormatJSON, err)
	}
	return Request{Fields: fields}, nil
}

// ParseID reads the {id} URL parameter. Anything but a positive integer is
// reported as not found.
func ParseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}
