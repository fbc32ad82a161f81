package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/rill-lang/rill/value"
)

// buildTestMessage constructs a minimal in-memory FileDescriptorProto
// for a message with a string, a bool and a repeated int32 field, the
// same descriptor shape Dial would produce from a parsed .proto file.
func buildTestMessage(t *testing.T) protoreflect.MessageDescriptor {
	t.Helper()
	label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	strType := descriptorpb.FieldDescriptorProto_TYPE_STRING
	boolType := descriptorpb.FieldDescriptorProto_TYPE_BOOL
	i32Type := descriptorpb.FieldDescriptorProto_TYPE_INT32

	fdProto := &descriptorpb.FileDescriptorProto{
		Name:    strPtr("llm_test.proto"),
		Package: strPtr("llmtest"),
		Syntax:  strPtr("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("Msg"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strPtr("text"), Number: int32Ptr(1), Label: &label, Type: &strType},
					{Name: strPtr("ok"), Number: int32Ptr(2), Label: &label, Type: &boolType},
					{Name: strPtr("tags"), Number: int32Ptr(3), Label: &repeated, Type: &i32Type},
				},
			},
		},
	}

	file, err := protodesc.NewFile(fdProto, nil)
	require.NoError(t, err)
	return file.Messages().ByName("Msg")
}

func strPtr(s string) *string { return &s }
func int32Ptr(n int32) *int32 { return &n }

func TestDictToMessageAndBackRoundTrips(t *testing.T) {
	md := buildTestMessage(t)
	msg := dynamicpb.NewMessage(md)

	d := value.NewDict().
		With("text", value.String{Value: "hello"}).
		With("ok", value.Bool{Value: true}).
		With("tags", value.NewList(value.Number{Value: 1}, value.Number{Value: 2}))

	require.NoError(t, dictToMessage(d, msg))

	out := messageToDict(msg)
	text, _ := out.Get("text")
	assert.Equal(t, value.String{Value: "hello"}, text)
	ok, _ := out.Get("ok")
	assert.Equal(t, value.Bool{Value: true}, ok)
	tags, _ := out.Get("tags")
	list, isList := tags.(*value.List)
	require.True(t, isList)
	assert.Equal(t, value.Number{Value: 1}, list.Elements[0])
	assert.Equal(t, value.Number{Value: 2}, list.Elements[1])
}

func TestDictToMessageIgnoresUnknownFields(t *testing.T) {
	md := buildTestMessage(t)
	msg := dynamicpb.NewMessage(md)

	d := value.NewDict().With("nonexistent", value.String{Value: "x"})
	assert.NoError(t, dictToMessage(d, msg))
}

func TestDictToMessageTypeMismatchErrors(t *testing.T) {
	md := buildTestMessage(t)
	msg := dynamicpb.NewMessage(md)

	d := value.NewDict().With("ok", value.String{Value: "not a bool"})
	assert.Error(t, dictToMessage(d, msg))
}
