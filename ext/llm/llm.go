// Package llm registers the llm::complete host function: a generic,
// codegen-free gRPC call whose request and response messages are
// built dynamically from a .proto descriptor, so a host can wire an
// LLM backend by method name and descriptor at runtime with no
// generated stubs.
//
// .proto files are parsed with
// github.com/jhump/protoreflect/desc/protoparse and methods are
// invoked by descriptor, landing on
// google.golang.org/protobuf/types/dynamicpb for request/response
// messages so they interoperate with the rest of the module's
// google.golang.org/protobuf-based stack.
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/rill-lang/rill/host"
	"github.com/rill-lang/rill/value"
)

// Client holds a loaded method descriptor and the grpc connection
// llm::complete dispatches through. One Client serves one RPC method;
// a host registers one Client per backend it wants to expose.
type Client struct {
	mu     sync.Mutex
	conn   *grpc.ClientConn
	method protoreflect.MethodDescriptor
	path   string // "/package.Service/Method"
}

// Dial loads the method descriptor named service/method out of the
// .proto at protoPath and opens an insecure gRPC connection to target.
// TLS configuration is left to a future extension.
func Dial(target, protoPath, serviceName, methodName string) (*Client, error) {
	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(protoPath)
	if err != nil {
		return nil, fmt.Errorf("llm: parsing %s: %w", protoPath, err)
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("llm: %s produced no file descriptors", protoPath)
	}

	fdProto := fds[0].AsFileDescriptorProto()
	file, err := protodesc.NewFile(fdProto, protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("llm: resolving descriptor for %s: %w", protoPath, err)
	}

	svc := file.Services().ByName(protoreflect.Name(serviceName))
	if svc == nil {
		return nil, fmt.Errorf("llm: service %q not found in %s", serviceName, protoPath)
	}
	method := svc.Methods().ByName(protoreflect.Name(methodName))
	if method == nil {
		return nil, fmt.Errorf("llm: method %q not found on service %q", methodName, serviceName)
	}

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("llm: connecting to %s: %w", target, err)
	}

	return &Client{
		conn:   conn,
		method: method,
		path:   fmt.Sprintf("/%s.%s/%s", file.Package(), serviceName, methodName),
	}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Registrations returns the host.Registration set exposed under the
// "llm" namespace (llm::complete).
func (c *Client) Registrations() []host.Registration {
	return []host.Registration{
		{
			Name: "complete",
			Params: []value.ParamSpec{
				{Name: "request", Type: "dict", Doc: "request fields, marshaled onto the configured proto message"},
			},
			Fn:          c.complete,
			Description: "invokes the configured completion RPC, returning the response as a dict",
			ReturnType:  "dict",
			TimeoutMs:   30000,
		},
	}
}

func (c *Client) complete(ctx context.Context, h value.Host, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("llm::complete requires a request dict argument")
	}
	reqDict, ok := args[0].(*value.Dict)
	if !ok {
		return nil, fmt.Errorf("llm::complete request must be a dict, got %s", value.InferKind(args[0]))
	}

	correlationID := uuid.NewString()
	h.Emit("host_call", map[string]interface{}{"function": "llm::complete", "correlation_id": correlationID})

	reqMsg := dynamicpb.NewMessage(c.method.Input())
	if err := dictToMessage(reqDict, reqMsg); err != nil {
		return nil, fmt.Errorf("llm::complete: building request: %w", err)
	}
	respMsg := dynamicpb.NewMessage(c.method.Output())

	if err := c.conn.Invoke(ctx, c.path, reqMsg, respMsg); err != nil {
		return nil, fmt.Errorf("llm::complete: rpc failed: %w", err)
	}

	return messageToDict(respMsg), nil
}

// dictToMessage fills msg's fields from d by matching proto field
// names, recursing into nested messages and repeated scalars/messages.
func dictToMessage(d *value.Dict, msg *dynamicpb.Message) error {
	fields := msg.Descriptor().Fields()
	for _, key := range d.Keys() {
		fd := fields.ByName(protoreflect.Name(key))
		if fd == nil {
			continue // unknown field names are ignored, not an error
		}
		v, _ := d.Get(key)
		if fd.IsList() {
			if err := setListField(msg, fd, v); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			continue
		}
		pv, err := scalarToProtoValue(fd, v)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		msg.Set(fd, pv)
	}
	return nil
}

func setListField(msg *dynamicpb.Message, fd protoreflect.FieldDescriptor, v value.Value) error {
	l, ok := v.(*value.List)
	if !ok {
		return fmt.Errorf("expected a list, got %s", value.InferKind(v))
	}
	list := msg.Mutable(fd).List()
	for _, el := range l.Elements {
		ev, err := scalarToProtoValue(fd, el)
		if err != nil {
			return err
		}
		list.Append(ev)
	}
	return nil
}

func scalarToProtoValue(fd protoreflect.FieldDescriptor, v value.Value) (protoreflect.Value, error) {
	if fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
		d, ok := v.(*value.Dict)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("expected a dict for message field %q, got %s", fd.Name(), value.InferKind(v))
		}
		nested := dynamicpb.NewMessage(fd.Message())
		if err := dictToMessage(d, nested); err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfMessage(nested), nil
	}

	switch fd.Kind() {
	case protoreflect.StringKind:
		s, ok := v.(value.String)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("expected a string for field %q, got %s", fd.Name(), value.InferKind(v))
		}
		return protoreflect.ValueOfString(s.Value), nil
	case protoreflect.BoolKind:
		b, ok := v.(value.Bool)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("expected a bool for field %q, got %s", fd.Name(), value.InferKind(v))
		}
		return protoreflect.ValueOfBool(b.Value), nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, ok := v.(value.Number)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("expected a number for field %q, got %s", fd.Name(), value.InferKind(v))
		}
		return protoreflect.ValueOfInt32(int32(n.Value)), nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, ok := v.(value.Number)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("expected a number for field %q, got %s", fd.Name(), value.InferKind(v))
		}
		return protoreflect.ValueOfInt64(int64(n.Value)), nil
	case protoreflect.FloatKind:
		n, ok := v.(value.Number)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("expected a number for field %q, got %s", fd.Name(), value.InferKind(v))
		}
		return protoreflect.ValueOfFloat32(float32(n.Value)), nil
	case protoreflect.DoubleKind:
		n, ok := v.(value.Number)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("expected a number for field %q, got %s", fd.Name(), value.InferKind(v))
		}
		return protoreflect.ValueOfFloat64(n.Value), nil
	default:
		return protoreflect.Value{}, fmt.Errorf("field %q has unsupported proto kind %s", fd.Name(), fd.Kind())
	}
}

// messageToDict is the inverse of dictToMessage, walking only the
// fields msg actually has set (plus populated repeateds).
func messageToDict(msg *dynamicpb.Message) *value.Dict {
	d := value.NewDict()
	msg.Range(func(fd protoreflect.FieldDescriptor, pv protoreflect.Value) bool {
		d = d.With(string(fd.Name()), fromProtoValue(fd, pv))
		return true
	})
	return d
}

func fromProtoValue(fd protoreflect.FieldDescriptor, pv protoreflect.Value) value.Value {
	if fd.IsList() {
		list := pv.List()
		elems := make([]value.Value, list.Len())
		for i := 0; i < list.Len(); i++ {
			elems[i] = fromScalarProtoValue(fd, list.Get(i))
		}
		return value.NewList(elems...)
	}
	return fromScalarProtoValue(fd, pv)
}

func fromScalarProtoValue(fd protoreflect.FieldDescriptor, pv protoreflect.Value) value.Value {
	if fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
		return messageToDict(pv.Message().Interface().(*dynamicpb.Message))
	}
	switch fd.Kind() {
	case protoreflect.StringKind:
		return value.String{Value: pv.String()}
	case protoreflect.BoolKind:
		return value.Bool{Value: pv.Bool()}
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return value.Number{Value: pv.Float()}
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return value.Number{Value: float64(pv.Int())}
	default:
		return value.String{Value: pv.String()}
	}
}
