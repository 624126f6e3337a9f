package serviceimpl

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
)

// descriptorHash identifies a descriptor by content
func descriptorHash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// checkInput fails with ErrInputNotFound unless path is an existing regular file
func checkInput(fs afero.Fs, path, kind string) error {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s file %s", services.ErrInputNotFound, kind, path)
		}
		return fmt.Errorf("failed to stat %s file: %w", kind, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s path %s is a directory", services.ErrInputNotFound, kind, path)
	}
	return nil
}

func decodeDescriptor(validate *validator.Validate, data []byte) (*dto.IngestDescriptor, error) {
	var desc dto.IngestDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%w: %v", services.ErrValidation, err)
	}

	if err := validate.Struct(&desc); err != nil {
		return nil, fmt.Errorf("%w: %s", services.ErrValidation, validationMessage(err))
	}

	if *desc.StartTime >= *desc.EndTime {
		return nil, fmt.Errorf("%w: start_time %v must be before end_time %v",
			services.ErrValidation, *desc.StartTime, *desc.EndTime)
	}

	return &desc, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// newValidator reports JSON field names in validation errors
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}
