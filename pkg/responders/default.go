package responders

import (
	"github.com/cairnlabs/cairn/pkg/domain"
	"github.com/cairnlabs/cairn/pkg/ports"
)

// Default builds the standard responder set keyed by id: the four
// specialists sharing one chat model, plus the progress-builder writing
// through the given document store. Either dependency may be nil.
func Default(model ports.ChatModel, docs ports.DocumentStore, opts ...Option) map[string]ports.Responder {
	return map[string]ports.Responder{
		domain.ResponderVision:    NewVision(model, opts...),
		domain.ResponderAnalogy:   NewAnalogy(model, opts...),
		domain.ResponderLogic:     NewLogic(model, opts...),
		domain.ResponderExecution: NewExecution(model, opts...),
		domain.ResponderProgress:  NewProgress(docs, opts...),
	}
}
