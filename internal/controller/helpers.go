package controller

import (
	"strconv"

	"github.com/google/uuid"
)

func parseFloat(raw string) float64 {
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}

func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}
