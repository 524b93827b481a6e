package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0912345678", "0912345678", "Standard format"},
		{"091 234 5678", "0912345678", "With spaces"},
		{"091-234-5678", "0912345678", "With dashes"},
		{"091.234.5678", "0912345678", "With dots"},
		{"(091) 234 5678", "0912345678", "With parentheses"},
		{"0712345678", "0712345678", "Safaricom 07"},
		{"0987654321", "0987654321", "Ethio Telecom 09"},
		{"251912345678", "0912345678", "With country code"},
		{"+251912345678", "0912345678", "With plus country code"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"123", ErrInvalidLength, "Too short"},
		{"09123456789", ErrInvalidLength, "Too long"},
		{"0812345678", ErrInvalidPrefix, "Invalid prefix 08"},
		{"0612345678", ErrInvalidPrefix, "Invalid prefix 06"},
		{"091234567a", ErrInvalidFormat, "Contains letters"},
		{"091-234-567a", ErrInvalidFormat, "Contains letters with dashes"},
		{"091 234 567!", ErrInvalidFormat, "Contains special characters"},
		{"1234567890", ErrInvalidPrefix, "Valid length but invalid prefix"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Error(t, err)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"0912345678", "0912345678", "Already clean"},
		{"091 234 5678", "0912345678", "With spaces"},
		{"091-234-5678", "0912345678", "With dashes"},
		{"091.234.5678", "0912345678", "With dots"},
		{"(091) 234 5678", "0912345678", "With parentheses"},
		{"+251912345678", "0912345678", "With country code and plus"},
		{"251912345678", "0912345678", "With country code"},
		{"091-234-5678  ", "0912345678", "With trailing spaces"},
		{"  091-234-5678", "0912345678", "With leading spaces"},
		{"091 - 234 - 5678", "0912345678", "Multiple separators"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := validator.Sanitize(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestIsValidPrefix(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []string{
		"0912345678",
		"0987654321",
		"0712345678",
		"0700000000",
	}

	for _, phone := range validNumbers {
		t.Run(phone[:2], func(t *testing.T) {
			assert.True(t, validator.IsValidPrefix(phone))
		})
	}

	invalidNumbers := []string{
		"0612345678",
		"0812345678",
		"0112345678",
		"1912345678",
	}

	for _, phone := range invalidNumbers {
		t.Run(phone[:2], func(t *testing.T) {
			assert.False(t, validator.IsValidPrefix(phone))
		})
	}

	// Edge cases
	assert.False(t, validator.IsValidPrefix("0"))
	assert.False(t, validator.IsValidPrefix(""))
}

func TestFormat(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"0912345678", "0912 345 678", "Standard format"},
		{"091 234 5678", "0912 345 678", "With spaces"},
		{"091-234-5678", "0912 345 678", "With dashes"},
		{"0712345678", "0712 345 678", "Safaricom 07"},
		{"251912345678", "0912 345 678", "With country code"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := validator.Format(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}

	// Test invalid input
	_, err := validator.Format("invalid")
	assert.Error(t, err)
}

func TestGetOperator(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"0912345678", "Ethio Telecom", "Ethio Telecom 09"},
		{"0987654321", "Ethio Telecom", "Ethio Telecom 098"},
		{"0712345678", "Safaricom Ethiopia", "Safaricom 07"},
		{"091 234 5678", "Ethio Telecom", "Ethio Telecom with spaces"},
		{"251712345678", "Safaricom Ethiopia", "Safaricom with country code"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			operator, err := validator.GetOperator(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, operator)
		})
	}

	// Test invalid input
	_, err := validator.GetOperator("invalid")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []string{
		"0912345678",
		"091 234 5678",
		"091-234-5678",
		"0712345678",
		"251912345678",
	}

	for _, phone := range validNumbers {
		t.Run(phone, func(t *testing.T) {
			assert.True(t, validator.IsValid(phone))
		})
	}

	invalidNumbers := []string{
		"",
		"invalid",
		"123",
		"0812345678",
		"091234567a",
	}

	for _, phone := range invalidNumbers {
		t.Run(phone, func(t *testing.T) {
			assert.False(t, validator.IsValid(phone))
		})
	}
}

func TestMustValidate(t *testing.T) {
	validator := NewPhoneValidator()

	// Test valid phone
	result := validator.MustValidate("0912345678")
	assert.Equal(t, "0912345678", result)

	// Test invalid phone (should panic)
	assert.Panics(t, func() {
		validator.MustValidate("invalid")
	})
}

func TestCountryCodeHandling(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"251912345678", "0912345678", "With 251 country code"},
		{"+251912345678", "0912345678", "With +251 country code"},
		{"251 91 234 5678", "0912345678", "With 251 and spaces"},
		{"251-91-234-5678", "0912345678", "With 251 and dashes"},
		{"0912345678", "0912345678", "Without country code"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestEdgeCases(t *testing.T) {
	validator := NewPhoneValidator()

	t.Run("Phone with only spaces", func(t *testing.T) {
		_, err := validator.Validate("     ")
		assert.Error(t, err)
	})

	t.Run("Phone with mixed separators", func(t *testing.T) {
		sanitized, err := validator.Validate("091-234 5678")
		require.NoError(t, err)
		assert.Equal(t, "0912345678", sanitized)
	})

	t.Run("Phone with unicode digits", func(t *testing.T) {
		_, err := validator.Validate("091резреирей5678")
		assert.Error(t, err)
	})

	t.Run("Very long input", func(t *testing.T) {
		_, err := validator.Validate("091234567890123456789012345678901")
		assert.Error(t, err)
		assert.Equal(t, ErrInvalidLength, err)
	})
}

func TestConcurrentValidation(t *testing.T) {
	validator := NewPhoneValidator()

	done := make(chan bool)
	errors := make(chan error, 100)

	phones := []string{
		"0912345678",
		"0987654321",
		"0712345678",
		"0911111111",
		"0722222222",
	}

	// Validate 100 phones concurrently
	for i := 0; i < 100; i++ {
		go func(phone string) {
			_, err := validator.Validate(phone)
			if err != nil {
				errors <- err
			}
			done <- true
		}(phones[i%len(phones)])
	}

	// Wait for all goroutines
	for i := 0; i < 100; i++ {
		<-done
	}

	close(errors)
	assert.Empty(t, errors)
}

func BenchmarkValidate(b *testing.B) {
	validator := NewPhoneValidator()
	phone := "0912345678"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = validator.Validate(phone)
	}
}

func BenchmarkSanitize(b *testing.B) {
	validator := NewPhoneValidator()
	phone := "091-234-5678"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = validator.Sanitize(phone)
	}
}
