package operators

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"
)

// HashFunction identifies a digest in BytesHash calls.
type HashFunction uint8

const (
	Blake2s256 HashFunction = 0x02
	Blake2b512 HashFunction = 0x03
	MD5        HashFunction = 0x04
	Ripemd160  HashFunction = 0x06
	SHA1       HashFunction = 0x08
	SHA2_224   HashFunction = 0x09
	SHA2_256   HashFunction = 0x0A
	SHA2_384   HashFunction = 0x0B
	SHA2_512   HashFunction = 0x0C
	SHA3_224   HashFunction = 0x0D
	SHA3_256   HashFunction = 0x0E
	SHA3_384   HashFunction = 0x0F
	SHA3_512   HashFunction = 0x10
	Keccak256  HashFunction = 0x20
)

var hashNames = map[string]HashFunction{
	"Blake2s256": Blake2s256,
	"Blake2b512": Blake2b512,
	"MD5":        MD5,
	"Ripemd160":  Ripemd160,
	"SHA1":       SHA1,
	"SHA2_224":   SHA2_224,
	"SHA2_256":   SHA2_256,
	"SHA2_384":   SHA2_384,
	"SHA2_512":   SHA2_512,
	"SHA3_224":   SHA3_224,
	"SHA3_256":   SHA3_256,
	"SHA3_384":   SHA3_384,
	"SHA3_512":   SHA3_512,
	"Keccak256":  Keccak256,
}

// Digest hashes data with fn. The second result is false for unknown codes.
func Digest(fn HashFunction, data []byte) ([]byte, bool) {
	switch fn {
	case Blake2s256:
		sum := blake2s.Sum256(data)
		return sum[:], true
	case Blake2b512:
		sum := blake2b.Sum512(data)
		return sum[:], true
	case MD5:
		sum := md5.Sum(data)
		return sum[:], true
	case Ripemd160:
		h := ripemd160.New()
		h.Write(data)
		return h.Sum(nil), true
	case SHA1:
		sum := sha1.Sum(data)
		return sum[:], true
	case SHA2_224:
		sum := sha256.Sum224(data)
		return sum[:], true
	case SHA2_256:
		sum := sha256.Sum256(data)
		return sum[:], true
	case SHA2_384:
		sum := sha512.Sum384(data)
		return sum[:], true
	case SHA2_512:
		sum := sha512.Sum512(data)
		return sum[:], true
	case SHA3_224:
		sum := sha3.Sum224(data)
		return sum[:], true
	case SHA3_256:
		sum := sha3.Sum256(data)
		return sum[:], true
	case SHA3_384:
		sum := sha3.Sum384(data)
		return sum[:], true
	case SHA3_512:
		sum := sha3.Sum512(data)
		return sum[:], true
	case Keccak256:
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		return h.Sum(nil), true
	}
	return nil, false
}
