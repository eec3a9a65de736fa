package core

import "errors"

var (
	// ErrNoFile is returned by Submit when nothing is selected.
	ErrNoFile = errors.New("no file provided")

	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("upload in progress")

	// ErrClosed is returned by a session that has been torn down.
	ErrClosed = errors.New("upload session closed")

	// ErrProcessing wraps every failure reported by a Processor.
	ErrProcessing = errors.New("processing failed")
)

// User-facing session messages.
const (
	MsgNoFile           = "Por favor, selecione uma imagem primeiro."
	MsgProcessingFailed = "Houve um erro no upload. Tente novamente."
)
