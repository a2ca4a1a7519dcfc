// Package stream provides a buffered stream over a single file descriptor.
//
// A [Stream] offers the classic buffered-file-handle surface: byte-at-a-time
// reads and writes ([Stream.GetChar], [Stream.PutChar]), element-block
// transfers ([Stream.ReadBlock], [Stream.WriteBlock]), repositioning
// ([Stream.Seek]), and the queries [Stream.Tell], [Stream.Fileno],
// [Stream.EOF] and [Stream.Errors].
//
// # Basic Usage
//
//	s, err := stream.Open("data.bin", "w+")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	s.WriteBlock([]byte("ABC"), 1, 3)
//	s.Seek(0, io.SeekStart)
//
//	for c := s.GetChar(); c != stream.EOF; c = s.GetChar() {
//	    fmt.Printf("%c", c)
//	}
//
// # Buffering
//
// Every stream owns one [BufferSize] byte buffer that holds either read
// look-ahead or staged writes, never both. Reading after writing flushes the
// staged bytes first; writing after reading discards the look-ahead and,
// when the descriptor can seek, moves it back to the logical position.
// Writes are flushed automatically when the buffer fills, and on
// [Stream.Seek], [Stream.Flush] and [Stream.Close].
//
// # Error Handling
//
// Byte and position operations return the [EOF] sentinel on failure. End of
// stream and I/O errors are not distinguished at that boundary: both
// increment the EOF counter and the error counter together. [Stream.Err]
// reports the last fault; it is [io.EOF] for a plain end of stream and
// wraps [ErrRead], [ErrWrite] or [ErrSeek] otherwise. Counters are never
// reset.
//
// [Stream.ReadBlock] and [Stream.WriteBlock] report zero elements when any
// byte of the transfer faults, even though earlier bytes of the same call
// were already copied into the destination (read) or staged (write). Use
// [Stream.Tell] around the call to recover how many bytes actually moved.
//
// # Concurrency
//
// A Stream is not safe for concurrent use. Callers sharing one across
// goroutines must serialize every call behind a single lock.
package stream
