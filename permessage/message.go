package permessage

// Message is the payload view the pipeline transforms. The manager never
// interprets Payload; it only threads it through the active sessions in
// order.
type Message struct {
	Opcode  byte
	Payload []byte
	Final   bool
}

// Frame is the RSV-bit view a session inspects to decide whether a
// combination of reserved bits is one it permits. The manager does not
// validate that these bits are semantically correct for the frame's
// contents, only which bits are allowed to be set at all.
type Frame struct {
	RSV1, RSV2, RSV3 bool
	Opcode           byte
	Final            bool
}
