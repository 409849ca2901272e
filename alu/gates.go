package alu

// AndGate, OrGate and XorGate are named explicitly, mirroring the
// reference datapath's gate-level description of branch resolution
// (PCSrc = jal OR (branch AND (branchTaken XOR bne))).
func AndGate(a, b bool) bool { return a && b }
func OrGate(a, b bool) bool  { return a || b }
func XorGate(a, b bool) bool { return a != b }
