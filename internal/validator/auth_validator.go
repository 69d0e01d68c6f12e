package validator

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"printshop/internal/usecase"
	auth "printshop/internal/usecase/auth_usecase"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,50}$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.RegisterValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(in auth.RegisterUserInput) []usecase.FieldError {
	var fields []usecase.FieldError

	if !usernamePattern.MatchString(in.Username) {
		fields = append(fields, usecase.FieldError{Field: "username", Message: "3-50 characters of letters, digits, '_', '.' or '-'"})
	}

	// パスワード最低文字数 8
	switch {
	case utf8.RuneCountInString(in.Password) < 8:
		fields = append(fields, usecase.FieldError{Field: "password", Message: "must be at least 8 characters"})
	case isWeakPassword(in.Password):
		fields = append(fields, usecase.FieldError{Field: "password", Message: "too common"})
	}

	if !isValidEmailFormat(in.Email) {
		fields = append(fields, usecase.FieldError{Field: "email", Message: "invalid email format"})
	}

	if strings.TrimSpace(in.Location) == "" {
		fields = append(fields, usecase.FieldError{Field: "location", Message: "required"})
	} else if utf8.RuneCountInString(in.Location) > 255 {
		fields = append(fields, usecase.FieldError{Field: "location", Message: "must be at most 255 characters"})
	}

	return fields
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(in auth.LoginInput) []usecase.FieldError {
	var fields []usecase.FieldError
	if strings.TrimSpace(in.Username) == "" {
		fields = append(fields, usecase.FieldError{Field: "username", Message: "required"})
	}
	if in.Password == "" {
		fields = append(fields, usecase.FieldError{Field: "password", Message: "required"})
	}
	return fields
}

// メールチェック
func isValidEmailFormat(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" || len(trimmed) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(trimmed)
	//"Name <a@b>" 形式は受けない
	return err == nil && addr.Address == trimmed
}

var weakPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwertyuiop":  {},
	"qwerty123":   {},
	"letmein123":  {},
	"admin123":    {},
	"iloveyou":    {},
	"11111111":    {},
}

// よくある弱いパスワード
func isWeakPassword(password string) bool {
	_, ok := weakPasswords[strings.ToLower(strings.TrimSpace(password))]
	return ok
}
