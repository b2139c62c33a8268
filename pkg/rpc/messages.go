package rpc

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// RecordSpendingRequest reports spend for one project.
type RecordSpendingRequest struct {
	ConfigName string
	ProjectID  uint64
	Spent      float64
}

// ExceedsBudgetRequest asks for a project's current budget state.
type ExceedsBudgetRequest struct {
	ConfigName string
	ProjectID  uint64
}

// ExceedsBudgetReply answers both operations.
type ExceedsBudgetReply struct {
	ExceedsBudget bool
}

// message is implemented by every wire type in this package. The codec
// routes grpc marshalling through it.
type message interface {
	marshalAppend(b []byte) []byte
	unmarshal(b []byte) error
}

func (m *RecordSpendingRequest) marshalAppend(b []byte) []byte {
	if m.ConfigName != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.ConfigName)
	}
	if m.ProjectID != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, m.ProjectID)
	}
	if m.Spent != 0 {
		b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(m.Spent))
	}
	return b
}

func (m *RecordSpendingRequest) unmarshal(b []byte) error {
	*m = RecordSpendingRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.ConfigName = v
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.ProjectID = v
			b = b[n:]
		case num == 3 && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Spent = math.Float64frombits(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func (m *ExceedsBudgetRequest) marshalAppend(b []byte) []byte {
	if m.ConfigName != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.ConfigName)
	}
	if m.ProjectID != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, m.ProjectID)
	}
	return b
}

func (m *ExceedsBudgetRequest) unmarshal(b []byte) error {
	*m = ExceedsBudgetRequest{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.ConfigName = v
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.ProjectID = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func (m *ExceedsBudgetReply) marshalAppend(b []byte) []byte {
	if m.ExceedsBudget {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

func (m *ExceedsBudgetReply) unmarshal(b []byte) error {
	*m = ExceedsBudgetReply{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.ExceedsBudget = v != 0
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
