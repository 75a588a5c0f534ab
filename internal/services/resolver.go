package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/models"
)

const userAgent = "resume-assistant/1.0"

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type SourceResolver interface {
	Resolve(ctx context.Context, source models.DocumentSource) (*models.RawDocument, error)
}

type sourceResolver struct {
	client          HTTPDoer
	maxFileSize     int64
	downloadTimeout time.Duration
}

func NewSourceResolver(client HTTPDoer, maxFileSize int64, downloadTimeout time.Duration) SourceResolver {
	if client == nil {
		client = &http.Client{}
	}
	return &sourceResolver{
		client:          client,
		maxFileSize:     maxFileSize,
		downloadTimeout: downloadTimeout,
	}
}

func (s *sourceResolver) Resolve(ctx context.Context, source models.DocumentSource) (*models.RawDocument, error) {
	switch src := source.(type) {
	case models.UploadedFile:
		return s.resolveUpload(src)
	case *models.UploadedFile:
		if src == nil {
			break
		}
		return s.resolveUpload(*src)
	case models.RemoteURL:
		return s.resolveURL(ctx, src.URL)
	case *models.RemoteURL:
		if src == nil {
			break
		}
		return s.resolveURL(ctx, src.URL)
	}
	return nil, apperror.New(apperror.KindInvalidRequest, "a resume file or resume_url is required")
}

func (s *sourceResolver) resolveUpload(src models.UploadedFile) (*models.RawDocument, error) {
	format, ok := models.FormatFromFilename(src.Filename)
	if !ok {
		return nil, unsupportedFormat(src.Filename)
	}
	if src.Content == nil {
		return nil, apperror.New(apperror.KindInvalidRequest, "uploaded file is empty")
	}

	data, err := s.readCapped(src.Content)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindInvalidRequest, "failed to read uploaded file", err)
	}
	if len(data) == 0 {
		return nil, apperror.New(apperror.KindInvalidRequest, "uploaded file is empty")
	}

	return &models.RawDocument{
		Filename:  path.Base(src.Filename),
		Format:    format,
		Data:      data,
		SizeBytes: int64(len(data)),
	}, nil
}

func (s *sourceResolver) resolveURL(ctx context.Context, rawURL string) (*models.RawDocument, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperror.Newf(apperror.KindInvalidURL, "invalid resume_url %q: must be an absolute http(s) URL", rawURL)
	}

	dlCtx, cancel := context.WithTimeout(ctx, s.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(dlCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidURL, "failed to build download request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.downloadError(ctx, dlCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.Newf(apperror.KindDownloadFailed, "failed to download file: HTTP %d", resp.StatusCode)
	}

	if resp.ContentLength > s.maxFileSize {
		return nil, s.tooLarge(resp.ContentLength)
	}

	filename, format, ok := resolveRemoteFormat(u, resp.Header)
	if !ok {
		return nil, unsupportedFormat(filename)
	}

	data, err := s.readCapped(resp.Body)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, s.downloadError(ctx, dlCtx, err)
	}
	if len(data) == 0 {
		return nil, apperror.New(apperror.KindDownloadFailed, "downloaded file is empty")
	}

	return &models.RawDocument{
		Filename:  filename,
		Format:    format,
		Data:      data,
		SizeBytes: int64(len(data)),
	}, nil
}

// readCapped reads at most maxFileSize bytes and fails once the cap is exceeded.
func (s *sourceResolver) readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, s.tooLarge(-1)
	}
	return data, nil
}

func (s *sourceResolver) tooLarge(size int64) error {
	limitMB := float64(s.maxFileSize) / (1024 * 1024)
	if size > 0 {
		return apperror.Newf(apperror.KindPayloadTooLarge,
			"file size (%.2fMB) exceeds maximum allowed size of %.2fMB",
			float64(size)/(1024*1024), limitMB)
	}
	return apperror.Newf(apperror.KindPayloadTooLarge, "file exceeds maximum allowed size of %.2fMB", limitMB)
}

func (s *sourceResolver) downloadError(parent, dlCtx context.Context, err error) error {
	if parent.Err() != nil {
		return apperror.Wrap(apperror.KindDownloadFailed, "download cancelled by caller", err)
	}

	var netErr net.Error
	if errors.Is(dlCtx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.Wrap(apperror.KindDownloadTimeout,
			fmt.Sprintf("request timed out after %s", s.downloadTimeout), err)
	}

	return apperror.Wrap(apperror.KindDownloadFailed, "failed to download file", err)
}

// resolveRemoteFormat tries the Content-Disposition filename, then the URL
// path, then the Content-Type header.
func resolveRemoteFormat(u *url.URL, header http.Header) (string, models.FileFormat, bool) {
	var candidates []string
	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			candidates = append(candidates, path.Base(params["filename"]))
		}
	}
	if base := path.Base(u.Path); base != "." && base != "/" {
		candidates = append(candidates, base)
	}

	for _, name := range candidates {
		if format, ok := models.FormatFromFilename(name); ok {
			return name, format, true
		}
	}

	if format, ok := models.FormatFromContentType(header.Get("Content-Type")); ok {
		return "resume." + string(format), format, true
	}

	if len(candidates) > 0 {
		return candidates[0], "", false
	}
	return "", "", false
}

func unsupportedFormat(filename string) error {
	return apperror.Newf(apperror.KindUnsupportedFormat,
		"invalid file type %q. Allowed types: %s", path.Ext(filename), strings.Join(models.SupportedExtensions, ", "))
}
