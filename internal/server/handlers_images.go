package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"imgd/internal/media"
	"imgd/internal/pipeline"
)

const (
	msgNoFile        = "No file was uploaded"
	msgUnknownType   = "Unable to determine the file type"
	msgJPEGOnly      = "This endpoint is only for processing JPEG images"
	msgRescaleFailed = "Error occurred during rescaling"
	msgTooLarge      = "Uploaded file is too large"
)

const (
	infoDoc        = "Upload an image file and show its info like size and type"
	prepareJPEGDoc = "Upload an image file in JPEG format and have its GPS info stripped, and auto rotated"
	fitDoc         = "Upload an image file and fit it into a box of the specified size"
)

func resizeAvatarDoc() string {
	return fmt.Sprintf(
		"Upload an image file in supported format, and resize for website avatars in the following sizes: %s. Supported formats are: %s",
		pipeline.SupportedSizesDesc(),
		strings.Join(media.AllMIMEs(), ", "),
	)
}

// receiveUpload pulls the "file" part out of the multipart body. On failure
// it has already written the error response; callers just return.
func (s *Server) receiveUpload(c *gin.Context) ([]byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			c.JSON(http.StatusRequestEntityTooLarge, errorMessage(msgTooLarge))
		} else {
			c.JSON(http.StatusBadRequest, errorMessage(msgNoFile))
		}
		return nil, false
	}
	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, errorMessage(msgNoFile))
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorMessage(msgNoFile))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorMessage(msgNoFile))
		return nil, false
	}
	return data, true
}

// badImage reports whether the error means the bytes never made it past
// detection or decoding, which clients get back as a 400.
func badImage(err error) bool {
	var decodeErr *media.DecodeError
	return errors.Is(err, media.ErrUnknownFormat) || errors.As(err, &decodeErr)
}

type imageInfoResponse struct {
	Status     string `json:"status"`
	Success    bool   `json:"success"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	MIMEType   string `json:"mime_type"`
	BinarySize int    `json:"binary_size"`
	Frames     int    `json:"frames"`
}

func (s *Server) handleImageInfo(c *gin.Context) {
	data, ok := s.receiveUpload(c)
	if !ok {
		return
	}

	info, err := s.processor.Info(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorMessage(msgUnknownType))
		return
	}

	c.JSON(http.StatusOK, imageInfoResponse{
		Status:     "ok",
		Success:    true,
		Width:      info.Width,
		Height:     info.Height,
		MIMEType:   info.MIME,
		BinarySize: info.Size,
		Frames:     info.Frames,
	})
}

type prepareJPEGResponse struct {
	Uploaded uploadedInfo `json:"uploaded"`
	Status   string       `json:"status"`
	Output   string       `json:"output"`
	Success  bool         `json:"success"`
}

func (s *Server) handlePrepareJPEG(c *gin.Context) {
	data, ok := s.receiveUpload(c)
	if !ok {
		return
	}

	out, err := s.processor.PrepareJPEG(c.Request.Context(), data)
	switch {
	case err == nil:
	case badImage(err):
		c.JSON(http.StatusBadRequest, errorMessage(msgUnknownType))
		return
	case errors.Is(err, pipeline.ErrNotJPEG):
		c.JSON(http.StatusBadRequest, errorMessage(msgJPEGOnly))
		return
	default:
		c.JSON(http.StatusInternalServerError, errorMessage(fmt.Sprintf("Failed to prepare image: %v", err)))
		return
	}

	c.JSON(http.StatusOK, prepareJPEGResponse{
		Uploaded: uploadedInfo{Size: len(data), MIME: out.MIME},
		Status:   "ok",
		Output:   base64.StdEncoding.EncodeToString(out.Bytes),
		Success:  true,
	})
}

type fitResponse struct {
	Uploaded uploadedInfo `json:"uploaded"`
	Status   string       `json:"status"`
	Success  bool         `json:"success"`
	Start    float64      `json:"start"`
	End      float64      `json:"end"`
	Cost     int64        `json:"cost"`
	Output   string       `json:"output"`
}

func (s *Server) handleFit(c *gin.Context) {
	box, err := strconv.Atoi(c.Param("box"))
	if err != nil || box < 0 {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	data, ok := s.receiveUpload(c)
	if !ok {
		return
	}

	// The envelope reports the uploaded payload's own type, not the type
	// of the fitted output.
	format, err := media.Detect(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorMessage(msgUnknownType))
		return
	}

	animated := c.Query("animated") != ""
	startedAt := time.Now()

	res, err := s.processor.Fit(c.Request.Context(), data, box, animated)
	if err != nil {
		if badImage(err) {
			c.JSON(http.StatusBadRequest, errorMessage(msgUnknownType))
			return
		}
		c.JSON(http.StatusInternalServerError, errorMessage(msgRescaleFailed))
		return
	}

	output := base64.StdEncoding.EncodeToString(res.Bytes)
	endedAt := time.Now()

	if c.Query("simple") != "" {
		c.Data(http.StatusOK, format.MIME(), []byte(output))
		return
	}

	c.JSON(http.StatusOK, fitResponse{
		Uploaded: uploadedInfo{Size: len(data), MIME: format.MIME()},
		Status:   "ok",
		Success:  true,
		Start:    epoch(startedAt),
		End:      epoch(endedAt),
		Cost:     endedAt.Sub(startedAt).Milliseconds(),
		Output:   output,
	})
}

type avatarEntry struct {
	Size int    `json:"size"`
	Body string `json:"body"`
}

// avatarResponse spells the sizes out as fields so the serialized order
// stays ascending and absent sizes are omitted rather than null.
type avatarResponse struct {
	Uploaded  uploadedInfo `json:"uploaded"`
	Status    string       `json:"status"`
	Success   bool         `json:"success"`
	Start     float64      `json:"start"`
	End       float64      `json:"end"`
	Cost      int64        `json:"cost"`
	Avatar24  *avatarEntry `json:"avatar24,omitempty"`
	Avatar48  *avatarEntry `json:"avatar48,omitempty"`
	Avatar73  *avatarEntry `json:"avatar73,omitempty"`
	Avatar128 *avatarEntry `json:"avatar128,omitempty"`
	Avatar256 *avatarEntry `json:"avatar256,omitempty"`
	Avatar512 *avatarEntry `json:"avatar512,omitempty"`
}

func avatarField(set pipeline.AvatarSet, size pipeline.AvatarSize) *avatarEntry {
	avatar, ok := set[size]
	if !ok {
		return nil
	}
	return &avatarEntry{
		Size: int(size),
		Body: base64.StdEncoding.EncodeToString(avatar.Bytes),
	}
}

func (s *Server) handleResizeAvatar(c *gin.Context) {
	data, ok := s.receiveUpload(c)
	if !ok {
		return
	}

	format, err := media.Detect(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorMessage(msgUnknownType))
		return
	}

	animated := c.Query("animated") != ""
	startedAt := time.Now()

	set, err := s.processor.ResizeAvatars(c.Request.Context(), data, animated)
	if err != nil {
		if badImage(err) {
			c.JSON(http.StatusBadRequest, errorMessage(msgUnknownType))
			return
		}
		c.JSON(http.StatusBadRequest, errorMessage(fmt.Sprintf("Failed to resize the uploaded image file: %v", err)))
		return
	}

	resp := avatarResponse{
		Uploaded:  uploadedInfo{Size: len(data), MIME: format.MIME()},
		Status:    "ok",
		Success:   true,
		Start:     epoch(startedAt),
		Avatar24:  avatarField(set, 24),
		Avatar48:  avatarField(set, 48),
		Avatar73:  avatarField(set, 73),
		Avatar128: avatarField(set, 128),
		Avatar256: avatarField(set, 256),
		Avatar512: avatarField(set, 512),
	}
	endedAt := time.Now()
	resp.End = epoch(endedAt)
	resp.Cost = endedAt.Sub(startedAt).Milliseconds()

	c.JSON(http.StatusOK, resp)
}
