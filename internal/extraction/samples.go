package extraction

var sampleMessages = []string{
	"Debit Card Transaction of USD 24.50 at STARBUCKS NY on 2024-05-12.",
	"Order #1234 confirmed. You spent $55.00 at Amazon.com today.",
	"BILLS: Your utility payment of $142.10 was processed successfully.",
}

// SampleMessages returns example notifications for trying the importer.
func SampleMessages() []string {
	out := make([]string, len(sampleMessages))
	copy(out, sampleMessages)
	return out
}
