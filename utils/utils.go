package utils

import (
	"fmt"
	"time"
)

func TurnTimeToBR(t time.Time) *time.Time {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		fmt.Printf("Error loading location: %v\n", err)
		return nil
	}
	brTime := t.In(loc)
	return &brTime
}
