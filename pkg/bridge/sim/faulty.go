package sim

// Faulty wraps a peripheral with error injection for testing the host
// side error paths.
type Faulty struct {
	Peripheral
	WriteErr error
	ReadErr  error
}

// WriteReg implements Peripheral.
func (f *Faulty) WriteReg(reg uint8, data []byte) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	return f.Peripheral.WriteReg(reg, data)
}

// ReadReg implements Peripheral.
func (f *Faulty) ReadReg(reg uint8, n int) ([]byte, error) {
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.Peripheral.ReadReg(reg, n)
}
