package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// CalculateFileHash возвращает SHA-256 содержимого файла в hex.
// Ошибка открытия оборачивается, errors.Is(err, fs.ErrNotExist) сохраняется.
func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer file.Close()

	return hashReader(file)
}

// CalculateDataHash возвращает SHA-256 данных в памяти. Для одинакового
// содержимого совпадает с CalculateFileHash.
func CalculateDataHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("не удалось прочитать файл: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
