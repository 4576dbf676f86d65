package parsers

import (
	"fmt"
	"logsight/internal/parser/clf"

	"github.com/pterm/pterm"
)

// Registry manages all available log parsers
type Registry struct {
	parsers map[string]LogParser
	order   []string
	logger  *pterm.Logger
}

// NewRegistry creates a new parser registry with all built-in parsers
func NewRegistry(logger *pterm.Logger) *Registry {
	registry := &Registry{
		parsers: make(map[string]LogParser),
		logger:  logger,
	}

	registry.Register(clf.Name, clf.NewParser(logger))
	logger.Debug("Registered parser", logger.Args("type", clf.Name))

	return registry
}

// Register adds a parser to the registry. Parsers are sniffed in registration order.
func (r *Registry) Register(name string, parser LogParser) {
	if _, exists := r.parsers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.parsers[name] = parser
}

// Get retrieves a parser by type
func (r *Registry) Get(parserType string) (LogParser, error) {
	parser, exists := r.parsers[parserType]
	if !exists {
		r.logger.WithCaller().Warn("Parser not found", r.logger.Args("type", parserType))
		return nil, fmt.Errorf("parser not found: %s", parserType)
	}
	return parser, nil
}

// Detect returns the first parser whose sniffer accepts the file contents.
func (r *Registry) Detect(contents string) (LogParser, bool) {
	for _, name := range r.order {
		parser := r.parsers[name]
		if parser.CanParse(contents) {
			r.logger.Trace("Log format detected", r.logger.Args("parser", name))
			return parser, true
		}
	}
	return nil, false
}

// GetAll returns all registered parsers
func (r *Registry) GetAll() map[string]LogParser {
	return r.parsers
}
