/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// MeasurementsDirName holds the project's body measurement files.
const MeasurementsDirName = "measurements"

// MeasurementsFilePath returns the canonical measurements file for the
// project, or "" for a nil handle. The file is plain line-oriented text
// parsed by internal/measure.
func MeasurementsFilePath(ph *ProjectHandle) string {
	if ph == nil || ph.Root == "" {
		return ""
	}
	return filepath.Join(ph.Root, MeasurementsDirName, "measurements.txt")
}

// ReadMeasurements returns the contents of the project measurements file.
// A missing file reads as empty, not as an error.
func ReadMeasurements(ph *ProjectHandle) (string, error) {
	p := MeasurementsFilePath(ph)
	if p == "" {
		return "", errors.New("nil ProjectHandle")
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read measurements: %w", err)
	}
	return string(b), nil
}

// WriteMeasurements replaces the measurements file with the same
// temp-then-rename dance the manifest uses.
func WriteMeasurements(ph *ProjectHandle, text string) error {
	p := MeasurementsFilePath(ph)
	if p == "" {
		return errors.New("nil ProjectHandle")
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure measurements dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(p), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, []byte(text)); err != nil {
		return fmt.Errorf("write temp measurements: %w", err)
	}
	if _, err := os.Stat(p); err == nil {
		_ = os.Remove(p)
	}
	if err := os.Rename(temp, p); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace measurements: %w", err)
	}
	return nil
}
