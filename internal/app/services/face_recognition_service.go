package services

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/attendance-admin/internal/app/models/dto"
	"github.com/yigit/attendance-admin/internal/app/repositories"
	"github.com/yigit/attendance-admin/internal/pkg/apperrors"
)

// FaceRecognitionConfig names the external recognition command
type FaceRecognitionConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// FaceRecognitionService runs the recognizer for a subject session
type FaceRecognitionService interface {
	// Enabled reports whether a recognition command is configured
	Enabled() bool
	Run(ctx context.Context, subjectID int64) (*dto.FaceRecognitionResult, error)
}

type faceRecognitionServiceImpl struct {
	cfg         FaceRecognitionConfig
	subjectRepo repositories.ISubjectRepository
	logger      zerolog.Logger
}

// NewFaceRecognitionService creates a new FaceRecognitionService
func NewFaceRecognitionService(cfg FaceRecognitionConfig, subjectRepo repositories.ISubjectRepository, logger zerolog.Logger) FaceRecognitionService {
	return &faceRecognitionServiceImpl{cfg: cfg, subjectRepo: subjectRepo, logger: logger}
}

func (s *faceRecognitionServiceImpl) Enabled() bool {
	return s.cfg.Command != ""
}

// maxOutput bounds how much command output is shown in a flash message
const maxOutput = 500

// Run executes the command with the subject id appended to its arguments
func (s *faceRecognitionServiceImpl) Run(ctx context.Context, subjectID int64) (*dto.FaceRecognitionResult, error) {
	if !s.Enabled() {
		return nil, apperrors.ErrFaceRecognitionNotConfigured
	}
	if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, s.cfg.Args...), strconv.FormatInt(subjectID, 10))
	cmd := exec.CommandContext(ctx, s.cfg.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of a killed command may keep the output pipes open.
	cmd.WaitDelay = time.Second

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	log := s.logger.With().Int64("subjectID", subjectID).Str("command", s.cfg.Command).Dur("elapsed", elapsed).Logger()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn().Msg("Face recognition timed out")
			return nil, apperrors.NewCustomError(apperrors.ErrBadRequest, "Face recognition timed out.")
		}
		log.Error().Err(err).Str("stderr", truncate(stderr.String())).Msg("Face recognition failed")
		msg := "Face recognition failed."
		if detail := truncate(stderr.String()); detail != "" {
			msg = "Face recognition failed: " + detail
		}
		return nil, apperrors.NewCustomError(apperrors.ErrBadRequest, msg)
	}

	log.Info().Msg("Face recognition finished")
	return &dto.FaceRecognitionResult{Output: truncate(stdout.String()), Duration: elapsed}, nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxOutput {
		return string(r[:maxOutput]) + "..."
	}
	return s
}
