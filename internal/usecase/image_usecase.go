package usecase

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"printshop/internal/logger"
)

const maxPromptLength = 1000

// 画像生成APIの約束。返すのはURLかdata URL。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type ImageUsecase struct {
	gen ImageGenerator
	log *logger.Logger
}

// genがnilなら未設定扱い（503）
func NewImageUsecase(gen ImageGenerator, log *logger.Logger) *ImageUsecase {
	return &ImageUsecase{gen: gen, log: log.With("service", "ImageUsecase")}
}

type GenerateImageOutput struct {
	ImageURL string `json:"imageUrl"`
}

func (u *ImageUsecase) Generate(ctx context.Context, userID int64, prompt string) (GenerateImageOutput, error) {
	if userID <= 0 {
		return GenerateImageOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return GenerateImageOutput{}, NewValidationError([]FieldError{{Field: "prompt", Message: "required"}})
	}
	if utf8.RuneCountInString(prompt) > maxPromptLength {
		return GenerateImageOutput{}, NewValidationError([]FieldError{{Field: "prompt", Message: "must be at most 1000 characters"}})
	}
	if u.gen == nil {
		return GenerateImageOutput{}, NewHTTPError(http.StatusServiceUnavailable, "image generation not configured")
	}

	url, err := u.gen.GenerateImage(ctx, prompt)
	if err != nil {
		u.log.Error("image generation failed", "user_id", userID, "error", err.Error())
		return GenerateImageOutput{}, NewHTTPError(http.StatusBadGateway, "image generation failed")
	}
	return GenerateImageOutput{ImageURL: url}, nil
}
