package main

import (
	"errors"
	"fmt"
	"os"

	"fundamental/pricing/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0
	ExitError     = 1 // Runtime or input error
	ExitNoModel   = 2 // Model file missing or untrained
	ExitTooLittle = 3 // Corpus too small to train
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var insufficient *models.InsufficientDataError
		switch {
		case errors.As(err, &insufficient):
			os.Exit(ExitTooLittle)
		case errors.Is(err, models.ErrModelNotTrained):
			os.Exit(ExitNoModel)
		}
		os.Exit(ExitError)
	}
}
