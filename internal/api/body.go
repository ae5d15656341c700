package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sort"

	"github.com/pribylovaa/car-market/internal/models"
)

// Multipart - тело multipart/form-data.
type Multipart struct {
	Fields map[string]string
	Files  []models.File
}

// encodedBody - тело, собранное один раз: повтор после refresh
// отправляет те же байты.
type encodedBody struct {
	data        []byte
	contentType string
}

func (r Request) encode() (encodedBody, error) {
	switch {
	case r.JSON != nil && r.Form != nil:
		return encodedBody{}, errors.New("request has both json and multipart body")

	case r.Form != nil:
		return r.Form.encode()

	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return encodedBody{}, fmt.Errorf("encode json body: %w", err)
		}
		return encodedBody{data: data, contentType: contentTypeJSON}, nil

	default:
		return encodedBody{contentType: contentTypeJSON}, nil
	}
}

func (m *Multipart) encode() (encodedBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return encodedBody{}, fmt.Errorf("write field %q: %w", k, err)
		}
	}

	for _, f := range m.Files {
		if f.Content == nil {
			return encodedBody{}, fmt.Errorf("file %q has no content", f.Name)
		}

		field := f.FieldName
		if field == "" {
			field = "file"
		}

		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return encodedBody{}, fmt.Errorf("create form file %q: %w", f.Name, err)
		}

		if _, err := io.Copy(part, f.Content); err != nil {
			return encodedBody{}, fmt.Errorf("copy file %q: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return encodedBody{}, fmt.Errorf("close multipart writer: %w", err)
	}

	return encodedBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}
