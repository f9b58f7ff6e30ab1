package domain

// ArgumentKind is the kind of a move call argument
type ArgumentKind string

const (
	ArgObject  ArgumentKind = "object"
	ArgString  ArgumentKind = "string"
	ArgAddress ArgumentKind = "address"
)

// Argument is one argument of a move call
type Argument struct {
	Kind  ArgumentKind `json:"kind"`
	Value string       `json:"value"`
}

// ObjectArg references an on-chain object by id
func ObjectArg(id string) Argument {
	return Argument{Kind: ArgObject, Value: id}
}

// StringArg is a pure UTF-8 string argument
func StringArg(s string) Argument {
	return Argument{Kind: ArgString, Value: s}
}

// AddressArg is a pure address argument
func AddressArg(addr string) Argument {
	return Argument{Kind: ArgAddress, Value: addr}
}

// MoveCall is a single entry function call, the unit handed to the signer
type MoveCall struct {
	Target    string     `json:"target"`
	Arguments []Argument `json:"arguments"`
}

// SignedTransaction is a transaction approved and signed by the signer
type SignedTransaction struct {
	TxBytes    string   `json:"txBytes"`
	Signatures []string `json:"signatures"`
}

// Submission is the acknowledgement of a submitted transaction
type Submission struct {
	Digest string `json:"digest"`
}

// CreatedObject is an object created by a finalized transaction
type CreatedObject struct {
	ObjectID string `json:"objectId"`
	Type     string `json:"objectType,omitempty"`
}

// TxResult is the final outcome of a transaction once it reached finality
type TxResult struct {
	Digest  string          `json:"digest"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Created []CreatedObject `json:"created,omitempty"`
}

// CreatedIDs returns the ids of every created object
func (r TxResult) CreatedIDs() []string {
	ids := make([]string, 0, len(r.Created))
	for _, c := range r.Created {
		if c.ObjectID != "" {
			ids = append(ids, c.ObjectID)
		}
	}
	return ids
}
