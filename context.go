package sigil

// Context is the runtime scope an artifact is evaluated against: message
// headers, the message body, and named variables. Implementations coerce
// on read by returning typed Values.
//
// The routing engine hosting sigil supplies its own Context; MapContext is
// a ready-made implementation for tests and standalone use.
type Context interface {
	// GetVariable returns the named variable, or false if unset.
	GetVariable(name string) (Value, bool)

	// SetVariable records a variable. Init-block bindings are mirrored
	// here during evaluation, which makes them observable to the caller
	// after an evaluation with no body.
	SetVariable(name string, v Value)

	// GetHeader returns the named message header, or false if unset.
	GetHeader(name string) (Value, bool)

	// GetBody returns the message body, or false if there is none.
	GetBody() (Value, bool)
}

// MapContext is a Context backed by plain maps. It is not safe for
// concurrent use; concurrent evaluations should each get their own.
type MapContext struct {
	headers map[string]Value
	vars    map[string]Value
	body    Value
	hasBody bool
}

// NewMapContext returns an empty MapContext.
func NewMapContext() *MapContext {
	return &MapContext{
		headers: map[string]Value{},
		vars:    map[string]Value{},
	}
}

// SetHeader records a message header. Plain Go values are wrapped.
func (c *MapContext) SetHeader(name string, v interface{}) *MapContext {
	c.headers[name] = ValueOf(v)
	return c
}

// SetBody records the message body.
func (c *MapContext) SetBody(v interface{}) *MapContext {
	c.body = ValueOf(v)
	c.hasBody = true
	return c
}

// SetVariable records a named variable.
func (c *MapContext) SetVariable(name string, v Value) {
	c.vars[name] = v
}

func (c *MapContext) GetVariable(name string) (Value, bool) {
	v, ok := c.vars[name]
	return v, ok
}

func (c *MapContext) GetHeader(name string) (Value, bool) {
	v, ok := c.headers[name]
	return v, ok
}

func (c *MapContext) GetBody() (Value, bool) {
	return c.body, c.hasBody
}
