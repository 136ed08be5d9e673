package api

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Tallal-Arif/MerkleStreamBackend/internal/jsonhttp"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/merkle"
	"github.com/Tallal-Arif/MerkleStreamBackend/internal/upload"
)

const (
	errNoFilePart    = "No file part"
	errNoFileName    = "No selected file"
	errEmptyFile     = "Empty file"
	errFileTooLarge  = "File size exceeds limit"
	msgFileProcessed = "File processed in chunks"
)

type uploadResponse struct {
	Message    string   `json:"message"`
	MerkleRoot string   `json:"merkle_root"`
	UploadID   string   `json:"upload_id"`
	Filename   string   `json:"filename"`
	Size       int64    `json:"size"`
	Chunks     int      `json:"chunks"`
	Algorithm  string   `json:"algorithm"`
	Tree       []string `json:"tree,omitempty"`
}

type uploadsListResponse struct {
	Uploads []upload.Record `json:"uploads"`
}

// uploadHandler streams the "file" part of a multipart form into the merkle
// tree builder. Nothing of the content is written to disk.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	part, err := filePart(r)
	if err != nil {
		if jsonhttp.IsBodyTooLarge(err) {
			jsonhttp.RequestEntityTooLarge(w, errFileTooLarge)
			return
		}
		s.logger.Debugf("upload: read form: %v", err)
		jsonhttp.BadRequest(w, errNoFilePart)
		return
	}
	defer part.Close()

	filename := rawFileName(part)
	if filename == "" || filename == "." {
		jsonhttp.BadRequest(w, errNoFileName)
		return
	}

	res, err := s.uploads.Process(r.Context(), filename, part)
	switch {
	case err == nil:
	case errors.Is(err, upload.ErrTooLarge), jsonhttp.IsBodyTooLarge(err):
		jsonhttp.RequestEntityTooLarge(w, errFileTooLarge)
		return
	case errors.Is(err, merkle.ErrEmptyInput):
		jsonhttp.BadRequest(w, errEmptyFile)
		return
	default:
		s.logger.Debugf("upload: process %q: %v", filename, err)
		s.logger.Error("upload: process failed")
		jsonhttp.InternalServerError(w, nil)
		return
	}

	resp := uploadResponse{
		Message:    msgFileProcessed,
		MerkleRoot: res.MerkleRoot,
		UploadID:   res.ID,
		Filename:   res.Filename,
		Size:       res.Size,
		Chunks:     res.Chunks,
		Algorithm:  res.Algorithm,
	}
	if s.includeTree(r) {
		resp.Tree = res.Tree
	}
	jsonhttp.OK(w, resp)
}

func (s *Server) includeTree(r *http.Request) bool {
	v := r.URL.Query().Get("tree")
	if v == "" {
		return s.cfg.IncludeTree
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// filePart advances the multipart reader to the part named "file".
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		p, err := mr.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, http.ErrMissingFile
			}
			return nil, err
		}
		if p.FormName() == "file" {
			return p, nil
		}
		p.Close()
	}
}

// rawFileName returns the filename parameter as the client sent it.
// Part.FileName strips directories, which would hide them from
// sanitize.SecureFilename.
func rawFileName(p *multipart.Part) string {
	_, params, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
	if err != nil {
		return p.FileName()
	}
	return params["filename"]
}

func (s *Server) uploadGetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.uploads.Get(r.Context(), id)
	if errors.Is(err, upload.ErrNotFound) {
		jsonhttp.NotFound(w, "upload not found")
		return
	}
	if err != nil {
		s.logger.Debugf("upload: get %s: %v", id, err)
		s.logger.Error("upload: get failed")
		jsonhttp.InternalServerError(w, nil)
		return
	}
	jsonhttp.OK(w, rec)
}

func (s *Server) uploadsListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.uploads.List(r.Context(), listLimit)
	if err != nil {
		s.logger.Debugf("upload: list: %v", err)
		s.logger.Error("upload: list failed")
		jsonhttp.InternalServerError(w, nil)
		return
	}
	if list == nil {
		list = []upload.Record{}
	}
	jsonhttp.OK(w, uploadsListResponse{Uploads: list})
}
