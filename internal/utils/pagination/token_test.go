package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard values
	updatedAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)
	id := "goal-123"

	token := EncodeToken(updatedAt, id)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedUpdatedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, updatedAt, decodedUpdatedAt, "Update time should match after decode")
	assert.Equal(t, id, decodedID, "ID should match after decode")

	// Test case 2: Zero time value
	zeroTime := time.Time{}
	zeroToken := EncodeToken(zeroTime, "")
	decodedZeroTime, decodedZeroID, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroTime, "Zero time should match after decode")
	assert.Empty(t, decodedZeroID, "Empty ID should match after decode")

	// Test case 3: ID containing the separator character
	pipeToken := EncodeToken(updatedAt, "a|b")
	_, decodedPipeID, err := DecodeToken(pipeToken)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, "a|b", decodedPipeID, "ID with separator should survive the round trip")
}

func TestDecodeTokenError(t *testing.T) {
	// Test invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo=" // Base64 encoded date without separator
	_, _, err = DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid date format
	invalidDateToken := "bm90YWRhdGV8Z29hbC0xMjM=" // Base64 encoded "notadate|goal-123"
	_, _, err = DecodeToken(invalidDateToken)
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "updated_at parse", "Error should mention date parsing issue")
}
