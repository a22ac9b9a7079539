package coap

// Code values this module needs to assemble outer OSCORE messages (§6).
// The full CoAP code space belongs to the transport collaborator; these
// are the two values the protect pipeline ever writes itself.
const (
	CodePOST    uint8 = 0x02 // 0.02 POST - outer code for protected requests
	CodeChanged uint8 = 0x44 // 2.04 Changed - fixed outer code for protected responses (§6)
)
