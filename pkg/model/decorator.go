package model

// Decorator adjusts a schema after it has been decoded from the generation
// service and before it replaces the draft.
type Decorator interface {
	Decorate(*Schema) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Schema) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(schema *Schema) error {
	return fn(schema)
}

// ApplyDecorators runs decorators in order, stopping at the first error.
func ApplyDecorators(schema *Schema, decorators ...Decorator) error {
	if schema == nil {
		return nil
	}
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(schema); err != nil {
			return err
		}
	}
	return nil
}
