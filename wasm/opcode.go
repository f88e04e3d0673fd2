package wasm

import (
	"fmt"
	"slices"

	"github.com/wippyai/wasm-validator/features"
)

// Opcode identifies an instruction. Primary opcodes are their byte value;
// prefixed opcodes are prefix<<8 | sub-opcode, so OpMemoryInit is 0xFC08.
type Opcode uint16

// Prefix bytes introducing a LEB128 sub-opcode.
const (
	PrefixMisc   byte = 0xFC
	PrefixSIMD   byte = 0xFD
	PrefixAtomic byte = 0xFE
)

// Control flow opcodes
const (
	OpUnreachable        Opcode = 0x00
	OpNop                Opcode = 0x01
	OpBlock              Opcode = 0x02
	OpLoop               Opcode = 0x03
	OpIf                 Opcode = 0x04
	OpElse               Opcode = 0x05
	OpEnd                Opcode = 0x0B
	OpBr                 Opcode = 0x0C
	OpBrIf               Opcode = 0x0D
	OpBrTable            Opcode = 0x0E
	OpReturn             Opcode = 0x0F
	OpCall               Opcode = 0x10
	OpCallIndirect       Opcode = 0x11
	OpReturnCall         Opcode = 0x12
	OpReturnCallIndirect Opcode = 0x13
)

// Parametric opcodes
const (
	OpDrop       Opcode = 0x1A
	OpSelect     Opcode = 0x1B
	OpSelectType Opcode = 0x1C
)

// Variable and table access opcodes
const (
	OpLocalGet  Opcode = 0x20
	OpLocalSet  Opcode = 0x21
	OpLocalTee  Opcode = 0x22
	OpGlobalGet Opcode = 0x23
	OpGlobalSet Opcode = 0x24
	OpTableGet  Opcode = 0x25
	OpTableSet  Opcode = 0x26
)

// Memory opcodes
const (
	OpI32Load    Opcode = 0x28
	OpI64Load    Opcode = 0x29
	OpF32Load    Opcode = 0x2A
	OpF64Load    Opcode = 0x2B
	OpI32Load8S  Opcode = 0x2C
	OpI32Load8U  Opcode = 0x2D
	OpI32Load16S Opcode = 0x2E
	OpI32Load16U Opcode = 0x2F
	OpI64Load8S  Opcode = 0x30
	OpI64Load8U  Opcode = 0x31
	OpI64Load16S Opcode = 0x32
	OpI64Load16U Opcode = 0x33
	OpI64Load32S Opcode = 0x34
	OpI64Load32U Opcode = 0x35
	OpI32Store   Opcode = 0x36
	OpI64Store   Opcode = 0x37
	OpF32Store   Opcode = 0x38
	OpF64Store   Opcode = 0x39
	OpI32Store8  Opcode = 0x3A
	OpI32Store16 Opcode = 0x3B
	OpI64Store8  Opcode = 0x3C
	OpI64Store16 Opcode = 0x3D
	OpI64Store32 Opcode = 0x3E
	OpMemorySize Opcode = 0x3F
	OpMemoryGrow Opcode = 0x40
)

// Constant opcodes
const (
	OpI32Const Opcode = 0x41
	OpI64Const Opcode = 0x42
	OpF32Const Opcode = 0x43
	OpF64Const Opcode = 0x44
)

// Comparison opcodes
const (
	OpI32Eqz Opcode = 0x45
	OpI32Eq  Opcode = 0x46
	OpI32Ne  Opcode = 0x47
	OpI32LtS Opcode = 0x48
	OpI32LtU Opcode = 0x49
	OpI32GtS Opcode = 0x4A
	OpI32GtU Opcode = 0x4B
	OpI32LeS Opcode = 0x4C
	OpI32LeU Opcode = 0x4D
	OpI32GeS Opcode = 0x4E
	OpI32GeU Opcode = 0x4F
	OpI64Eqz Opcode = 0x50
	OpI64Eq  Opcode = 0x51
	OpI64Ne  Opcode = 0x52
	OpI64LtS Opcode = 0x53
	OpI64LtU Opcode = 0x54
	OpI64GtS Opcode = 0x55
	OpI64GtU Opcode = 0x56
	OpI64LeS Opcode = 0x57
	OpI64LeU Opcode = 0x58
	OpI64GeS Opcode = 0x59
	OpI64GeU Opcode = 0x5A
	OpF32Eq  Opcode = 0x5B
	OpF32Ne  Opcode = 0x5C
	OpF32Lt  Opcode = 0x5D
	OpF32Gt  Opcode = 0x5E
	OpF32Le  Opcode = 0x5F
	OpF32Ge  Opcode = 0x60
	OpF64Eq  Opcode = 0x61
	OpF64Ne  Opcode = 0x62
	OpF64Lt  Opcode = 0x63
	OpF64Gt  Opcode = 0x64
	OpF64Le  Opcode = 0x65
	OpF64Ge  Opcode = 0x66
)

// Arithmetic opcodes
const (
	OpI32Clz      Opcode = 0x67
	OpI32Ctz      Opcode = 0x68
	OpI32Popcnt   Opcode = 0x69
	OpI32Add      Opcode = 0x6A
	OpI32Sub      Opcode = 0x6B
	OpI32Mul      Opcode = 0x6C
	OpI32DivS     Opcode = 0x6D
	OpI32DivU     Opcode = 0x6E
	OpI32RemS     Opcode = 0x6F
	OpI32RemU     Opcode = 0x70
	OpI32And      Opcode = 0x71
	OpI32Or       Opcode = 0x72
	OpI32Xor      Opcode = 0x73
	OpI32Shl      Opcode = 0x74
	OpI32ShrS     Opcode = 0x75
	OpI32ShrU     Opcode = 0x76
	OpI32Rotl     Opcode = 0x77
	OpI32Rotr     Opcode = 0x78
	OpI64Clz      Opcode = 0x79
	OpI64Ctz      Opcode = 0x7A
	OpI64Popcnt   Opcode = 0x7B
	OpI64Add      Opcode = 0x7C
	OpI64Sub      Opcode = 0x7D
	OpI64Mul      Opcode = 0x7E
	OpI64DivS     Opcode = 0x7F
	OpI64DivU     Opcode = 0x80
	OpI64RemS     Opcode = 0x81
	OpI64RemU     Opcode = 0x82
	OpI64And      Opcode = 0x83
	OpI64Or       Opcode = 0x84
	OpI64Xor      Opcode = 0x85
	OpI64Shl      Opcode = 0x86
	OpI64ShrS     Opcode = 0x87
	OpI64ShrU     Opcode = 0x88
	OpI64Rotl     Opcode = 0x89
	OpI64Rotr     Opcode = 0x8A
	OpF32Abs      Opcode = 0x8B
	OpF32Neg      Opcode = 0x8C
	OpF32Ceil     Opcode = 0x8D
	OpF32Floor    Opcode = 0x8E
	OpF32Trunc    Opcode = 0x8F
	OpF32Nearest  Opcode = 0x90
	OpF32Sqrt     Opcode = 0x91
	OpF32Add      Opcode = 0x92
	OpF32Sub      Opcode = 0x93
	OpF32Mul      Opcode = 0x94
	OpF32Div      Opcode = 0x95
	OpF32Min      Opcode = 0x96
	OpF32Max      Opcode = 0x97
	OpF32Copysign Opcode = 0x98
	OpF64Abs      Opcode = 0x99
	OpF64Neg      Opcode = 0x9A
	OpF64Ceil     Opcode = 0x9B
	OpF64Floor    Opcode = 0x9C
	OpF64Trunc    Opcode = 0x9D
	OpF64Nearest  Opcode = 0x9E
	OpF64Sqrt     Opcode = 0x9F
	OpF64Add      Opcode = 0xA0
	OpF64Sub      Opcode = 0xA1
	OpF64Mul      Opcode = 0xA2
	OpF64Div      Opcode = 0xA3
	OpF64Min      Opcode = 0xA4
	OpF64Max      Opcode = 0xA5
	OpF64Copysign Opcode = 0xA6
)

// Conversion opcodes
const (
	OpI32WrapI64        Opcode = 0xA7
	OpI32TruncF32S      Opcode = 0xA8
	OpI32TruncF32U      Opcode = 0xA9
	OpI32TruncF64S      Opcode = 0xAA
	OpI32TruncF64U      Opcode = 0xAB
	OpI64ExtendI32S     Opcode = 0xAC
	OpI64ExtendI32U     Opcode = 0xAD
	OpI64TruncF32S      Opcode = 0xAE
	OpI64TruncF32U      Opcode = 0xAF
	OpI64TruncF64S      Opcode = 0xB0
	OpI64TruncF64U      Opcode = 0xB1
	OpF32ConvertI32S    Opcode = 0xB2
	OpF32ConvertI32U    Opcode = 0xB3
	OpF32ConvertI64S    Opcode = 0xB4
	OpF32ConvertI64U    Opcode = 0xB5
	OpF32DemoteF64      Opcode = 0xB6
	OpF64ConvertI32S    Opcode = 0xB7
	OpF64ConvertI32U    Opcode = 0xB8
	OpF64ConvertI64S    Opcode = 0xB9
	OpF64ConvertI64U    Opcode = 0xBA
	OpF64PromoteF32     Opcode = 0xBB
	OpI32ReinterpretF32 Opcode = 0xBC
	OpI64ReinterpretF64 Opcode = 0xBD
	OpF32ReinterpretI32 Opcode = 0xBE
	OpF64ReinterpretI64 Opcode = 0xBF
)

// Sign extension opcodes
const (
	OpI32Extend8S  Opcode = 0xC0
	OpI32Extend16S Opcode = 0xC1
	OpI64Extend8S  Opcode = 0xC2
	OpI64Extend16S Opcode = 0xC3
	OpI64Extend32S Opcode = 0xC4
)

// Reference opcodes
const (
	OpRefNull   Opcode = 0xD0
	OpRefIsNull Opcode = 0xD1
	OpRefFunc   Opcode = 0xD2
)

// Saturating truncation opcodes (0xFC prefix)
const (
	OpI32TruncSatF32S Opcode = 0xFC00
	OpI32TruncSatF32U Opcode = 0xFC01
	OpI32TruncSatF64S Opcode = 0xFC02
	OpI32TruncSatF64U Opcode = 0xFC03
	OpI64TruncSatF32S Opcode = 0xFC04
	OpI64TruncSatF32U Opcode = 0xFC05
	OpI64TruncSatF64S Opcode = 0xFC06
	OpI64TruncSatF64U Opcode = 0xFC07
)

// Bulk memory and table opcodes (0xFC prefix)
const (
	OpMemoryInit Opcode = 0xFC08
	OpDataDrop   Opcode = 0xFC09
	OpMemoryCopy Opcode = 0xFC0A
	OpMemoryFill Opcode = 0xFC0B
	OpTableInit  Opcode = 0xFC0C
	OpElemDrop   Opcode = 0xFC0D
	OpTableCopy  Opcode = 0xFC0E
	OpTableGrow  Opcode = 0xFC0F
	OpTableSize  Opcode = 0xFC10
	OpTableFill  Opcode = 0xFC11
)

// SIMD opcodes (0xFD prefix)
const (
	OpV128Load             Opcode = 0xFD00
	OpV128Store            Opcode = 0xFD01
	OpV128Const            Opcode = 0xFD02
	OpV8x16Shuffle         Opcode = 0xFD03
	OpI8x16Splat           Opcode = 0xFD04
	OpI8x16ExtractLaneS    Opcode = 0xFD05
	OpI8x16ExtractLaneU    Opcode = 0xFD06
	OpI8x16ReplaceLane     Opcode = 0xFD07
	OpI16x8Splat           Opcode = 0xFD08
	OpI16x8ExtractLaneS    Opcode = 0xFD09
	OpI16x8ExtractLaneU    Opcode = 0xFD0A
	OpI16x8ReplaceLane     Opcode = 0xFD0B
	OpI32x4Splat           Opcode = 0xFD0C
	OpI32x4ExtractLane     Opcode = 0xFD0D
	OpI32x4ReplaceLane     Opcode = 0xFD0E
	OpI64x2Splat           Opcode = 0xFD0F
	OpI64x2ExtractLane     Opcode = 0xFD10
	OpI64x2ReplaceLane     Opcode = 0xFD11
	OpF32x4Splat           Opcode = 0xFD12
	OpF32x4ExtractLane     Opcode = 0xFD13
	OpF32x4ReplaceLane     Opcode = 0xFD14
	OpF64x2Splat           Opcode = 0xFD15
	OpF64x2ExtractLane     Opcode = 0xFD16
	OpF64x2ReplaceLane     Opcode = 0xFD17
	OpI8x16Eq              Opcode = 0xFD18
	OpI8x16Ne              Opcode = 0xFD19
	OpI8x16LtS             Opcode = 0xFD1A
	OpI8x16LtU             Opcode = 0xFD1B
	OpI8x16GtS             Opcode = 0xFD1C
	OpI8x16GtU             Opcode = 0xFD1D
	OpI8x16LeS             Opcode = 0xFD1E
	OpI8x16LeU             Opcode = 0xFD1F
	OpI8x16GeS             Opcode = 0xFD20
	OpI8x16GeU             Opcode = 0xFD21
	OpI16x8Eq              Opcode = 0xFD22
	OpI16x8Ne              Opcode = 0xFD23
	OpI16x8LtS             Opcode = 0xFD24
	OpI16x8LtU             Opcode = 0xFD25
	OpI16x8GtS             Opcode = 0xFD26
	OpI16x8GtU             Opcode = 0xFD27
	OpI16x8LeS             Opcode = 0xFD28
	OpI16x8LeU             Opcode = 0xFD29
	OpI16x8GeS             Opcode = 0xFD2A
	OpI16x8GeU             Opcode = 0xFD2B
	OpI32x4Eq              Opcode = 0xFD2C
	OpI32x4Ne              Opcode = 0xFD2D
	OpI32x4LtS             Opcode = 0xFD2E
	OpI32x4LtU             Opcode = 0xFD2F
	OpI32x4GtS             Opcode = 0xFD30
	OpI32x4GtU             Opcode = 0xFD31
	OpI32x4LeS             Opcode = 0xFD32
	OpI32x4LeU             Opcode = 0xFD33
	OpI32x4GeS             Opcode = 0xFD34
	OpI32x4GeU             Opcode = 0xFD35
	OpF32x4Eq              Opcode = 0xFD40
	OpF32x4Ne              Opcode = 0xFD41
	OpF32x4Lt              Opcode = 0xFD42
	OpF32x4Gt              Opcode = 0xFD43
	OpF32x4Le              Opcode = 0xFD44
	OpF32x4Ge              Opcode = 0xFD45
	OpF64x2Eq              Opcode = 0xFD46
	OpF64x2Ne              Opcode = 0xFD47
	OpF64x2Lt              Opcode = 0xFD48
	OpF64x2Gt              Opcode = 0xFD49
	OpF64x2Le              Opcode = 0xFD4A
	OpF64x2Ge              Opcode = 0xFD4B
	OpV128Not              Opcode = 0xFD4C
	OpV128And              Opcode = 0xFD4D
	OpV128Or               Opcode = 0xFD4E
	OpV128Xor              Opcode = 0xFD4F
	OpV128Bitselect        Opcode = 0xFD50
	OpI8x16Neg             Opcode = 0xFD51
	OpI8x16AnyTrue         Opcode = 0xFD52
	OpI8x16AllTrue         Opcode = 0xFD53
	OpI8x16Shl             Opcode = 0xFD54
	OpI8x16ShrS            Opcode = 0xFD55
	OpI8x16ShrU            Opcode = 0xFD56
	OpI8x16Add             Opcode = 0xFD57
	OpI8x16AddSaturateS    Opcode = 0xFD58
	OpI8x16AddSaturateU    Opcode = 0xFD59
	OpI8x16Sub             Opcode = 0xFD5A
	OpI8x16SubSaturateS    Opcode = 0xFD5B
	OpI8x16SubSaturateU    Opcode = 0xFD5C
	OpI8x16Mul             Opcode = 0xFD5D
	OpI16x8Neg             Opcode = 0xFD62
	OpI16x8AnyTrue         Opcode = 0xFD63
	OpI16x8AllTrue         Opcode = 0xFD64
	OpI16x8Shl             Opcode = 0xFD65
	OpI16x8ShrS            Opcode = 0xFD66
	OpI16x8ShrU            Opcode = 0xFD67
	OpI16x8Add             Opcode = 0xFD68
	OpI16x8AddSaturateS    Opcode = 0xFD69
	OpI16x8AddSaturateU    Opcode = 0xFD6A
	OpI16x8Sub             Opcode = 0xFD6B
	OpI16x8SubSaturateS    Opcode = 0xFD6C
	OpI16x8SubSaturateU    Opcode = 0xFD6D
	OpI16x8Mul             Opcode = 0xFD6E
	OpI32x4Neg             Opcode = 0xFD73
	OpI32x4AnyTrue         Opcode = 0xFD74
	OpI32x4AllTrue         Opcode = 0xFD75
	OpI32x4Shl             Opcode = 0xFD76
	OpI32x4ShrS            Opcode = 0xFD77
	OpI32x4ShrU            Opcode = 0xFD78
	OpI32x4Add             Opcode = 0xFD79
	OpI32x4Sub             Opcode = 0xFD7C
	OpI32x4Mul             Opcode = 0xFD7F
	OpI64x2Neg             Opcode = 0xFD84
	OpI64x2AnyTrue         Opcode = 0xFD85
	OpI64x2AllTrue         Opcode = 0xFD86
	OpI64x2Shl             Opcode = 0xFD87
	OpI64x2ShrS            Opcode = 0xFD88
	OpI64x2ShrU            Opcode = 0xFD89
	OpI64x2Add             Opcode = 0xFD8A
	OpI64x2Sub             Opcode = 0xFD8D
	OpF32x4Abs             Opcode = 0xFD95
	OpF32x4Neg             Opcode = 0xFD96
	OpF32x4Sqrt            Opcode = 0xFD97
	OpF32x4Add             Opcode = 0xFD9A
	OpF32x4Sub             Opcode = 0xFD9B
	OpF32x4Mul             Opcode = 0xFD9C
	OpF32x4Div             Opcode = 0xFD9D
	OpF32x4Min             Opcode = 0xFD9E
	OpF32x4Max             Opcode = 0xFD9F
	OpF64x2Abs             Opcode = 0xFDA0
	OpF64x2Neg             Opcode = 0xFDA1
	OpF64x2Sqrt            Opcode = 0xFDA2
	OpF64x2Add             Opcode = 0xFDA5
	OpF64x2Sub             Opcode = 0xFDA6
	OpF64x2Mul             Opcode = 0xFDA7
	OpF64x2Div             Opcode = 0xFDA8
	OpF64x2Min             Opcode = 0xFDA9
	OpF64x2Max             Opcode = 0xFDAA
	OpI32x4TruncSatF32x4S  Opcode = 0xFDAB
	OpI32x4TruncSatF32x4U  Opcode = 0xFDAC
	OpI64x2TruncSatF64x2S  Opcode = 0xFDAD
	OpI64x2TruncSatF64x2U  Opcode = 0xFDAE
	OpF32x4ConvertI32x4S   Opcode = 0xFDAF
	OpF32x4ConvertI32x4U   Opcode = 0xFDB0
	OpF64x2ConvertI64x2S   Opcode = 0xFDB1
	OpF64x2ConvertI64x2U   Opcode = 0xFDB2
	OpV8x16Swizzle         Opcode = 0xFDC0
	OpV8x16LoadSplat       Opcode = 0xFDC2
	OpV16x8LoadSplat       Opcode = 0xFDC3
	OpV32x4LoadSplat       Opcode = 0xFDC4
	OpV64x2LoadSplat       Opcode = 0xFDC5
	OpI8x16NarrowI16x8S    Opcode = 0xFDC6
	OpI8x16NarrowI16x8U    Opcode = 0xFDC7
	OpI16x8NarrowI32x4S    Opcode = 0xFDC8
	OpI16x8NarrowI32x4U    Opcode = 0xFDC9
	OpI16x8WidenLowI8x16S  Opcode = 0xFDCA
	OpI16x8WidenHighI8x16S Opcode = 0xFDCB
	OpI16x8WidenLowI8x16U  Opcode = 0xFDCC
	OpI16x8WidenHighI8x16U Opcode = 0xFDCD
	OpI32x4WidenLowI16x8S  Opcode = 0xFDCE
	OpI32x4WidenHighI16x8S Opcode = 0xFDCF
	OpI32x4WidenLowI16x8U  Opcode = 0xFDD0
	OpI32x4WidenHighI16x8U Opcode = 0xFDD1
	OpI16x8Load8x8S        Opcode = 0xFDD2
	OpI16x8Load8x8U        Opcode = 0xFDD3
	OpI32x4Load16x4S       Opcode = 0xFDD4
	OpI32x4Load16x4U       Opcode = 0xFDD5
	OpI64x2Load32x2S       Opcode = 0xFDD6
	OpI64x2Load32x2U       Opcode = 0xFDD7
	OpV128Andnot           Opcode = 0xFDD8
	OpI8x16AvgrU           Opcode = 0xFDD9
	OpI16x8AvgrU           Opcode = 0xFDDA
)

// Atomic opcodes (0xFE prefix)
const (
	OpAtomicNotify           Opcode = 0xFE00
	OpI32AtomicWait          Opcode = 0xFE01
	OpI64AtomicWait          Opcode = 0xFE02
	OpI32AtomicLoad          Opcode = 0xFE10
	OpI64AtomicLoad          Opcode = 0xFE11
	OpI32AtomicLoad8U        Opcode = 0xFE12
	OpI32AtomicLoad16U       Opcode = 0xFE13
	OpI64AtomicLoad8U        Opcode = 0xFE14
	OpI64AtomicLoad16U       Opcode = 0xFE15
	OpI64AtomicLoad32U       Opcode = 0xFE16
	OpI32AtomicStore         Opcode = 0xFE17
	OpI64AtomicStore         Opcode = 0xFE18
	OpI32AtomicStore8        Opcode = 0xFE19
	OpI32AtomicStore16       Opcode = 0xFE1A
	OpI64AtomicStore8        Opcode = 0xFE1B
	OpI64AtomicStore16       Opcode = 0xFE1C
	OpI64AtomicStore32       Opcode = 0xFE1D
	OpI32AtomicRmwAdd        Opcode = 0xFE1E
	OpI64AtomicRmwAdd        Opcode = 0xFE1F
	OpI32AtomicRmw8AddU      Opcode = 0xFE20
	OpI32AtomicRmw16AddU     Opcode = 0xFE21
	OpI64AtomicRmw8AddU      Opcode = 0xFE22
	OpI64AtomicRmw16AddU     Opcode = 0xFE23
	OpI64AtomicRmw32AddU     Opcode = 0xFE24
	OpI32AtomicRmwSub        Opcode = 0xFE25
	OpI64AtomicRmwSub        Opcode = 0xFE26
	OpI32AtomicRmw8SubU      Opcode = 0xFE27
	OpI32AtomicRmw16SubU     Opcode = 0xFE28
	OpI64AtomicRmw8SubU      Opcode = 0xFE29
	OpI64AtomicRmw16SubU     Opcode = 0xFE2A
	OpI64AtomicRmw32SubU     Opcode = 0xFE2B
	OpI32AtomicRmwAnd        Opcode = 0xFE2C
	OpI64AtomicRmwAnd        Opcode = 0xFE2D
	OpI32AtomicRmw8AndU      Opcode = 0xFE2E
	OpI32AtomicRmw16AndU     Opcode = 0xFE2F
	OpI64AtomicRmw8AndU      Opcode = 0xFE30
	OpI64AtomicRmw16AndU     Opcode = 0xFE31
	OpI64AtomicRmw32AndU     Opcode = 0xFE32
	OpI32AtomicRmwOr         Opcode = 0xFE33
	OpI64AtomicRmwOr         Opcode = 0xFE34
	OpI32AtomicRmw8OrU       Opcode = 0xFE35
	OpI32AtomicRmw16OrU      Opcode = 0xFE36
	OpI64AtomicRmw8OrU       Opcode = 0xFE37
	OpI64AtomicRmw16OrU      Opcode = 0xFE38
	OpI64AtomicRmw32OrU      Opcode = 0xFE39
	OpI32AtomicRmwXor        Opcode = 0xFE3A
	OpI64AtomicRmwXor        Opcode = 0xFE3B
	OpI32AtomicRmw8XorU      Opcode = 0xFE3C
	OpI32AtomicRmw16XorU     Opcode = 0xFE3D
	OpI64AtomicRmw8XorU      Opcode = 0xFE3E
	OpI64AtomicRmw16XorU     Opcode = 0xFE3F
	OpI64AtomicRmw32XorU     Opcode = 0xFE40
	OpI32AtomicRmwXchg       Opcode = 0xFE41
	OpI64AtomicRmwXchg       Opcode = 0xFE42
	OpI32AtomicRmw8XchgU     Opcode = 0xFE43
	OpI32AtomicRmw16XchgU    Opcode = 0xFE44
	OpI64AtomicRmw8XchgU     Opcode = 0xFE45
	OpI64AtomicRmw16XchgU    Opcode = 0xFE46
	OpI64AtomicRmw32XchgU    Opcode = 0xFE47
	OpI32AtomicRmwCmpxchg    Opcode = 0xFE48
	OpI64AtomicRmwCmpxchg    Opcode = 0xFE49
	OpI32AtomicRmw8CmpxchgU  Opcode = 0xFE4A
	OpI32AtomicRmw16CmpxchgU Opcode = 0xFE4B
	OpI64AtomicRmw8CmpxchgU  Opcode = 0xFE4C
	OpI64AtomicRmw16CmpxchgU Opcode = 0xFE4D
	OpI64AtomicRmw32CmpxchgU Opcode = 0xFE4E
)

// ImmKind selects the immediate encoding that follows an opcode.
type ImmKind uint8

const (
	ImmNone         ImmKind = iota
	ImmBlock                // BlockImm
	ImmIndex                // IndexImm
	ImmBrTable              // BrTableImm
	ImmCallIndirect         // CallIndirectImm
	ImmMemArg               // MemArgImm
	ImmMemory               // one reserved zero byte, no immediate value
	ImmI32                  // I32Imm
	ImmI64                  // I64Imm
	ImmF32                  // F32Imm
	ImmF64                  // F64Imm
	ImmSelectType           // SelectTypeImm
	ImmInit                 // InitImm
	ImmCopy                 // CopyImm
	ImmShuffle              // ShuffleImm
	ImmV128                 // V128Imm
	ImmLane                 // LaneImm
)

type opcodeInfo struct {
	name    string
	imm     ImmKind
	feature features.Feature
}

var opcodeInfos = map[Opcode]opcodeInfo{
	OpUnreachable:            {"unreachable", ImmNone, 0},
	OpNop:                    {"nop", ImmNone, 0},
	OpBlock:                  {"block", ImmBlock, 0},
	OpLoop:                   {"loop", ImmBlock, 0},
	OpIf:                     {"if", ImmBlock, 0},
	OpElse:                   {"else", ImmNone, 0},
	OpEnd:                    {"end", ImmNone, 0},
	OpBr:                     {"br", ImmIndex, 0},
	OpBrIf:                   {"br_if", ImmIndex, 0},
	OpBrTable:                {"br_table", ImmBrTable, 0},
	OpReturn:                 {"return", ImmNone, 0},
	OpCall:                   {"call", ImmIndex, 0},
	OpCallIndirect:           {"call_indirect", ImmCallIndirect, 0},
	OpReturnCall:             {"return_call", ImmIndex, features.TailCall},
	OpReturnCallIndirect:     {"return_call_indirect", ImmCallIndirect, features.TailCall},
	OpDrop:                   {"drop", ImmNone, 0},
	OpSelect:                 {"select", ImmNone, 0},
	OpSelectType:             {"select", ImmSelectType, features.ReferenceTypes},
	OpLocalGet:               {"local.get", ImmIndex, 0},
	OpLocalSet:               {"local.set", ImmIndex, 0},
	OpLocalTee:               {"local.tee", ImmIndex, 0},
	OpGlobalGet:              {"global.get", ImmIndex, 0},
	OpGlobalSet:              {"global.set", ImmIndex, 0},
	OpTableGet:               {"table.get", ImmIndex, features.ReferenceTypes},
	OpTableSet:               {"table.set", ImmIndex, features.ReferenceTypes},
	OpI32Load:                {"i32.load", ImmMemArg, 0},
	OpI64Load:                {"i64.load", ImmMemArg, 0},
	OpF32Load:                {"f32.load", ImmMemArg, 0},
	OpF64Load:                {"f64.load", ImmMemArg, 0},
	OpI32Load8S:              {"i32.load8_s", ImmMemArg, 0},
	OpI32Load8U:              {"i32.load8_u", ImmMemArg, 0},
	OpI32Load16S:             {"i32.load16_s", ImmMemArg, 0},
	OpI32Load16U:             {"i32.load16_u", ImmMemArg, 0},
	OpI64Load8S:              {"i64.load8_s", ImmMemArg, 0},
	OpI64Load8U:              {"i64.load8_u", ImmMemArg, 0},
	OpI64Load16S:             {"i64.load16_s", ImmMemArg, 0},
	OpI64Load16U:             {"i64.load16_u", ImmMemArg, 0},
	OpI64Load32S:             {"i64.load32_s", ImmMemArg, 0},
	OpI64Load32U:             {"i64.load32_u", ImmMemArg, 0},
	OpI32Store:               {"i32.store", ImmMemArg, 0},
	OpI64Store:               {"i64.store", ImmMemArg, 0},
	OpF32Store:               {"f32.store", ImmMemArg, 0},
	OpF64Store:               {"f64.store", ImmMemArg, 0},
	OpI32Store8:              {"i32.store8", ImmMemArg, 0},
	OpI32Store16:             {"i32.store16", ImmMemArg, 0},
	OpI64Store8:              {"i64.store8", ImmMemArg, 0},
	OpI64Store16:             {"i64.store16", ImmMemArg, 0},
	OpI64Store32:             {"i64.store32", ImmMemArg, 0},
	OpMemorySize:             {"memory.size", ImmMemory, 0},
	OpMemoryGrow:             {"memory.grow", ImmMemory, 0},
	OpI32Const:               {"i32.const", ImmI32, 0},
	OpI64Const:               {"i64.const", ImmI64, 0},
	OpF32Const:               {"f32.const", ImmF32, 0},
	OpF64Const:               {"f64.const", ImmF64, 0},
	OpI32Eqz:                 {"i32.eqz", ImmNone, 0},
	OpI32Eq:                  {"i32.eq", ImmNone, 0},
	OpI32Ne:                  {"i32.ne", ImmNone, 0},
	OpI32LtS:                 {"i32.lt_s", ImmNone, 0},
	OpI32LtU:                 {"i32.lt_u", ImmNone, 0},
	OpI32GtS:                 {"i32.gt_s", ImmNone, 0},
	OpI32GtU:                 {"i32.gt_u", ImmNone, 0},
	OpI32LeS:                 {"i32.le_s", ImmNone, 0},
	OpI32LeU:                 {"i32.le_u", ImmNone, 0},
	OpI32GeS:                 {"i32.ge_s", ImmNone, 0},
	OpI32GeU:                 {"i32.ge_u", ImmNone, 0},
	OpI64Eqz:                 {"i64.eqz", ImmNone, 0},
	OpI64Eq:                  {"i64.eq", ImmNone, 0},
	OpI64Ne:                  {"i64.ne", ImmNone, 0},
	OpI64LtS:                 {"i64.lt_s", ImmNone, 0},
	OpI64LtU:                 {"i64.lt_u", ImmNone, 0},
	OpI64GtS:                 {"i64.gt_s", ImmNone, 0},
	OpI64GtU:                 {"i64.gt_u", ImmNone, 0},
	OpI64LeS:                 {"i64.le_s", ImmNone, 0},
	OpI64LeU:                 {"i64.le_u", ImmNone, 0},
	OpI64GeS:                 {"i64.ge_s", ImmNone, 0},
	OpI64GeU:                 {"i64.ge_u", ImmNone, 0},
	OpF32Eq:                  {"f32.eq", ImmNone, 0},
	OpF32Ne:                  {"f32.ne", ImmNone, 0},
	OpF32Lt:                  {"f32.lt", ImmNone, 0},
	OpF32Gt:                  {"f32.gt", ImmNone, 0},
	OpF32Le:                  {"f32.le", ImmNone, 0},
	OpF32Ge:                  {"f32.ge", ImmNone, 0},
	OpF64Eq:                  {"f64.eq", ImmNone, 0},
	OpF64Ne:                  {"f64.ne", ImmNone, 0},
	OpF64Lt:                  {"f64.lt", ImmNone, 0},
	OpF64Gt:                  {"f64.gt", ImmNone, 0},
	OpF64Le:                  {"f64.le", ImmNone, 0},
	OpF64Ge:                  {"f64.ge", ImmNone, 0},
	OpI32Clz:                 {"i32.clz", ImmNone, 0},
	OpI32Ctz:                 {"i32.ctz", ImmNone, 0},
	OpI32Popcnt:              {"i32.popcnt", ImmNone, 0},
	OpI32Add:                 {"i32.add", ImmNone, 0},
	OpI32Sub:                 {"i32.sub", ImmNone, 0},
	OpI32Mul:                 {"i32.mul", ImmNone, 0},
	OpI32DivS:                {"i32.div_s", ImmNone, 0},
	OpI32DivU:                {"i32.div_u", ImmNone, 0},
	OpI32RemS:                {"i32.rem_s", ImmNone, 0},
	OpI32RemU:                {"i32.rem_u", ImmNone, 0},
	OpI32And:                 {"i32.and", ImmNone, 0},
	OpI32Or:                  {"i32.or", ImmNone, 0},
	OpI32Xor:                 {"i32.xor", ImmNone, 0},
	OpI32Shl:                 {"i32.shl", ImmNone, 0},
	OpI32ShrS:                {"i32.shr_s", ImmNone, 0},
	OpI32ShrU:                {"i32.shr_u", ImmNone, 0},
	OpI32Rotl:                {"i32.rotl", ImmNone, 0},
	OpI32Rotr:                {"i32.rotr", ImmNone, 0},
	OpI64Clz:                 {"i64.clz", ImmNone, 0},
	OpI64Ctz:                 {"i64.ctz", ImmNone, 0},
	OpI64Popcnt:              {"i64.popcnt", ImmNone, 0},
	OpI64Add:                 {"i64.add", ImmNone, 0},
	OpI64Sub:                 {"i64.sub", ImmNone, 0},
	OpI64Mul:                 {"i64.mul", ImmNone, 0},
	OpI64DivS:                {"i64.div_s", ImmNone, 0},
	OpI64DivU:                {"i64.div_u", ImmNone, 0},
	OpI64RemS:                {"i64.rem_s", ImmNone, 0},
	OpI64RemU:                {"i64.rem_u", ImmNone, 0},
	OpI64And:                 {"i64.and", ImmNone, 0},
	OpI64Or:                  {"i64.or", ImmNone, 0},
	OpI64Xor:                 {"i64.xor", ImmNone, 0},
	OpI64Shl:                 {"i64.shl", ImmNone, 0},
	OpI64ShrS:                {"i64.shr_s", ImmNone, 0},
	OpI64ShrU:                {"i64.shr_u", ImmNone, 0},
	OpI64Rotl:                {"i64.rotl", ImmNone, 0},
	OpI64Rotr:                {"i64.rotr", ImmNone, 0},
	OpF32Abs:                 {"f32.abs", ImmNone, 0},
	OpF32Neg:                 {"f32.neg", ImmNone, 0},
	OpF32Ceil:                {"f32.ceil", ImmNone, 0},
	OpF32Floor:               {"f32.floor", ImmNone, 0},
	OpF32Trunc:               {"f32.trunc", ImmNone, 0},
	OpF32Nearest:             {"f32.nearest", ImmNone, 0},
	OpF32Sqrt:                {"f32.sqrt", ImmNone, 0},
	OpF32Add:                 {"f32.add", ImmNone, 0},
	OpF32Sub:                 {"f32.sub", ImmNone, 0},
	OpF32Mul:                 {"f32.mul", ImmNone, 0},
	OpF32Div:                 {"f32.div", ImmNone, 0},
	OpF32Min:                 {"f32.min", ImmNone, 0},
	OpF32Max:                 {"f32.max", ImmNone, 0},
	OpF32Copysign:            {"f32.copysign", ImmNone, 0},
	OpF64Abs:                 {"f64.abs", ImmNone, 0},
	OpF64Neg:                 {"f64.neg", ImmNone, 0},
	OpF64Ceil:                {"f64.ceil", ImmNone, 0},
	OpF64Floor:               {"f64.floor", ImmNone, 0},
	OpF64Trunc:               {"f64.trunc", ImmNone, 0},
	OpF64Nearest:             {"f64.nearest", ImmNone, 0},
	OpF64Sqrt:                {"f64.sqrt", ImmNone, 0},
	OpF64Add:                 {"f64.add", ImmNone, 0},
	OpF64Sub:                 {"f64.sub", ImmNone, 0},
	OpF64Mul:                 {"f64.mul", ImmNone, 0},
	OpF64Div:                 {"f64.div", ImmNone, 0},
	OpF64Min:                 {"f64.min", ImmNone, 0},
	OpF64Max:                 {"f64.max", ImmNone, 0},
	OpF64Copysign:            {"f64.copysign", ImmNone, 0},
	OpI32WrapI64:             {"i32.wrap_i64", ImmNone, 0},
	OpI32TruncF32S:           {"i32.trunc_f32_s", ImmNone, 0},
	OpI32TruncF32U:           {"i32.trunc_f32_u", ImmNone, 0},
	OpI32TruncF64S:           {"i32.trunc_f64_s", ImmNone, 0},
	OpI32TruncF64U:           {"i32.trunc_f64_u", ImmNone, 0},
	OpI64ExtendI32S:          {"i64.extend_i32_s", ImmNone, 0},
	OpI64ExtendI32U:          {"i64.extend_i32_u", ImmNone, 0},
	OpI64TruncF32S:           {"i64.trunc_f32_s", ImmNone, 0},
	OpI64TruncF32U:           {"i64.trunc_f32_u", ImmNone, 0},
	OpI64TruncF64S:           {"i64.trunc_f64_s", ImmNone, 0},
	OpI64TruncF64U:           {"i64.trunc_f64_u", ImmNone, 0},
	OpF32ConvertI32S:         {"f32.convert_i32_s", ImmNone, 0},
	OpF32ConvertI32U:         {"f32.convert_i32_u", ImmNone, 0},
	OpF32ConvertI64S:         {"f32.convert_i64_s", ImmNone, 0},
	OpF32ConvertI64U:         {"f32.convert_i64_u", ImmNone, 0},
	OpF32DemoteF64:           {"f32.demote_f64", ImmNone, 0},
	OpF64ConvertI32S:         {"f64.convert_i32_s", ImmNone, 0},
	OpF64ConvertI32U:         {"f64.convert_i32_u", ImmNone, 0},
	OpF64ConvertI64S:         {"f64.convert_i64_s", ImmNone, 0},
	OpF64ConvertI64U:         {"f64.convert_i64_u", ImmNone, 0},
	OpF64PromoteF32:          {"f64.promote_f32", ImmNone, 0},
	OpI32ReinterpretF32:      {"i32.reinterpret_f32", ImmNone, 0},
	OpI64ReinterpretF64:      {"i64.reinterpret_f64", ImmNone, 0},
	OpF32ReinterpretI32:      {"f32.reinterpret_i32", ImmNone, 0},
	OpF64ReinterpretI64:      {"f64.reinterpret_i64", ImmNone, 0},
	OpI32Extend8S:            {"i32.extend8_s", ImmNone, features.SignExtension},
	OpI32Extend16S:           {"i32.extend16_s", ImmNone, features.SignExtension},
	OpI64Extend8S:            {"i64.extend8_s", ImmNone, features.SignExtension},
	OpI64Extend16S:           {"i64.extend16_s", ImmNone, features.SignExtension},
	OpI64Extend32S:           {"i64.extend32_s", ImmNone, features.SignExtension},
	OpRefNull:                {"ref.null", ImmNone, features.ReferenceTypes},
	OpRefIsNull:              {"ref.is_null", ImmNone, features.ReferenceTypes},
	OpRefFunc:                {"ref.func", ImmIndex, features.ReferenceTypes},
	OpI32TruncSatF32S:        {"i32.trunc_sat_f32_s", ImmNone, features.SaturatingFloatToInt},
	OpI32TruncSatF32U:        {"i32.trunc_sat_f32_u", ImmNone, features.SaturatingFloatToInt},
	OpI32TruncSatF64S:        {"i32.trunc_sat_f64_s", ImmNone, features.SaturatingFloatToInt},
	OpI32TruncSatF64U:        {"i32.trunc_sat_f64_u", ImmNone, features.SaturatingFloatToInt},
	OpI64TruncSatF32S:        {"i64.trunc_sat_f32_s", ImmNone, features.SaturatingFloatToInt},
	OpI64TruncSatF32U:        {"i64.trunc_sat_f32_u", ImmNone, features.SaturatingFloatToInt},
	OpI64TruncSatF64S:        {"i64.trunc_sat_f64_s", ImmNone, features.SaturatingFloatToInt},
	OpI64TruncSatF64U:        {"i64.trunc_sat_f64_u", ImmNone, features.SaturatingFloatToInt},
	OpMemoryInit:             {"memory.init", ImmInit, features.BulkMemory},
	OpDataDrop:               {"data.drop", ImmIndex, features.BulkMemory},
	OpMemoryCopy:             {"memory.copy", ImmCopy, features.BulkMemory},
	OpMemoryFill:             {"memory.fill", ImmMemory, features.BulkMemory},
	OpTableInit:              {"table.init", ImmInit, features.BulkMemory},
	OpElemDrop:               {"elem.drop", ImmIndex, features.BulkMemory},
	OpTableCopy:              {"table.copy", ImmCopy, features.BulkMemory},
	OpTableGrow:              {"table.grow", ImmIndex, features.ReferenceTypes},
	OpTableSize:              {"table.size", ImmIndex, features.ReferenceTypes},
	OpTableFill:              {"table.fill", ImmIndex, features.ReferenceTypes},
	OpV128Load:               {"v128.load", ImmMemArg, features.SIMD},
	OpV128Store:              {"v128.store", ImmMemArg, features.SIMD},
	OpV128Const:              {"v128.const", ImmV128, features.SIMD},
	OpV8x16Shuffle:           {"v8x16.shuffle", ImmShuffle, features.SIMD},
	OpI8x16Splat:             {"i8x16.splat", ImmNone, features.SIMD},
	OpI8x16ExtractLaneS:      {"i8x16.extract_lane_s", ImmLane, features.SIMD},
	OpI8x16ExtractLaneU:      {"i8x16.extract_lane_u", ImmLane, features.SIMD},
	OpI8x16ReplaceLane:       {"i8x16.replace_lane", ImmLane, features.SIMD},
	OpI16x8Splat:             {"i16x8.splat", ImmNone, features.SIMD},
	OpI16x8ExtractLaneS:      {"i16x8.extract_lane_s", ImmLane, features.SIMD},
	OpI16x8ExtractLaneU:      {"i16x8.extract_lane_u", ImmLane, features.SIMD},
	OpI16x8ReplaceLane:       {"i16x8.replace_lane", ImmLane, features.SIMD},
	OpI32x4Splat:             {"i32x4.splat", ImmNone, features.SIMD},
	OpI32x4ExtractLane:       {"i32x4.extract_lane", ImmLane, features.SIMD},
	OpI32x4ReplaceLane:       {"i32x4.replace_lane", ImmLane, features.SIMD},
	OpI64x2Splat:             {"i64x2.splat", ImmNone, features.SIMD},
	OpI64x2ExtractLane:       {"i64x2.extract_lane", ImmLane, features.SIMD},
	OpI64x2ReplaceLane:       {"i64x2.replace_lane", ImmLane, features.SIMD},
	OpF32x4Splat:             {"f32x4.splat", ImmNone, features.SIMD},
	OpF32x4ExtractLane:       {"f32x4.extract_lane", ImmLane, features.SIMD},
	OpF32x4ReplaceLane:       {"f32x4.replace_lane", ImmLane, features.SIMD},
	OpF64x2Splat:             {"f64x2.splat", ImmNone, features.SIMD},
	OpF64x2ExtractLane:       {"f64x2.extract_lane", ImmLane, features.SIMD},
	OpF64x2ReplaceLane:       {"f64x2.replace_lane", ImmLane, features.SIMD},
	OpI8x16Eq:                {"i8x16.eq", ImmNone, features.SIMD},
	OpI8x16Ne:                {"i8x16.ne", ImmNone, features.SIMD},
	OpI8x16LtS:               {"i8x16.lt_s", ImmNone, features.SIMD},
	OpI8x16LtU:               {"i8x16.lt_u", ImmNone, features.SIMD},
	OpI8x16GtS:               {"i8x16.gt_s", ImmNone, features.SIMD},
	OpI8x16GtU:               {"i8x16.gt_u", ImmNone, features.SIMD},
	OpI8x16LeS:               {"i8x16.le_s", ImmNone, features.SIMD},
	OpI8x16LeU:               {"i8x16.le_u", ImmNone, features.SIMD},
	OpI8x16GeS:               {"i8x16.ge_s", ImmNone, features.SIMD},
	OpI8x16GeU:               {"i8x16.ge_u", ImmNone, features.SIMD},
	OpI16x8Eq:                {"i16x8.eq", ImmNone, features.SIMD},
	OpI16x8Ne:                {"i16x8.ne", ImmNone, features.SIMD},
	OpI16x8LtS:               {"i16x8.lt_s", ImmNone, features.SIMD},
	OpI16x8LtU:               {"i16x8.lt_u", ImmNone, features.SIMD},
	OpI16x8GtS:               {"i16x8.gt_s", ImmNone, features.SIMD},
	OpI16x8GtU:               {"i16x8.gt_u", ImmNone, features.SIMD},
	OpI16x8LeS:               {"i16x8.le_s", ImmNone, features.SIMD},
	OpI16x8LeU:               {"i16x8.le_u", ImmNone, features.SIMD},
	OpI16x8GeS:               {"i16x8.ge_s", ImmNone, features.SIMD},
	OpI16x8GeU:               {"i16x8.ge_u", ImmNone, features.SIMD},
	OpI32x4Eq:                {"i32x4.eq", ImmNone, features.SIMD},
	OpI32x4Ne:                {"i32x4.ne", ImmNone, features.SIMD},
	OpI32x4LtS:               {"i32x4.lt_s", ImmNone, features.SIMD},
	OpI32x4LtU:               {"i32x4.lt_u", ImmNone, features.SIMD},
	OpI32x4GtS:               {"i32x4.gt_s", ImmNone, features.SIMD},
	OpI32x4GtU:               {"i32x4.gt_u", ImmNone, features.SIMD},
	OpI32x4LeS:               {"i32x4.le_s", ImmNone, features.SIMD},
	OpI32x4LeU:               {"i32x4.le_u", ImmNone, features.SIMD},
	OpI32x4GeS:               {"i32x4.ge_s", ImmNone, features.SIMD},
	OpI32x4GeU:               {"i32x4.ge_u", ImmNone, features.SIMD},
	OpF32x4Eq:                {"f32x4.eq", ImmNone, features.SIMD},
	OpF32x4Ne:                {"f32x4.ne", ImmNone, features.SIMD},
	OpF32x4Lt:                {"f32x4.lt", ImmNone, features.SIMD},
	OpF32x4Gt:                {"f32x4.gt", ImmNone, features.SIMD},
	OpF32x4Le:                {"f32x4.le", ImmNone, features.SIMD},
	OpF32x4Ge:                {"f32x4.ge", ImmNone, features.SIMD},
	OpF64x2Eq:                {"f64x2.eq", ImmNone, features.SIMD},
	OpF64x2Ne:                {"f64x2.ne", ImmNone, features.SIMD},
	OpF64x2Lt:                {"f64x2.lt", ImmNone, features.SIMD},
	OpF64x2Gt:                {"f64x2.gt", ImmNone, features.SIMD},
	OpF64x2Le:                {"f64x2.le", ImmNone, features.SIMD},
	OpF64x2Ge:                {"f64x2.ge", ImmNone, features.SIMD},
	OpV128Not:                {"v128.not", ImmNone, features.SIMD},
	OpV128And:                {"v128.and", ImmNone, features.SIMD},
	OpV128Or:                 {"v128.or", ImmNone, features.SIMD},
	OpV128Xor:                {"v128.xor", ImmNone, features.SIMD},
	OpV128Bitselect:          {"v128.bitselect", ImmNone, features.SIMD},
	OpI8x16Neg:               {"i8x16.neg", ImmNone, features.SIMD},
	OpI8x16AnyTrue:           {"i8x16.any_true", ImmNone, features.SIMD},
	OpI8x16AllTrue:           {"i8x16.all_true", ImmNone, features.SIMD},
	OpI8x16Shl:               {"i8x16.shl", ImmNone, features.SIMD},
	OpI8x16ShrS:              {"i8x16.shr_s", ImmNone, features.SIMD},
	OpI8x16ShrU:              {"i8x16.shr_u", ImmNone, features.SIMD},
	OpI8x16Add:               {"i8x16.add", ImmNone, features.SIMD},
	OpI8x16AddSaturateS:      {"i8x16.add_saturate_s", ImmNone, features.SIMD},
	OpI8x16AddSaturateU:      {"i8x16.add_saturate_u", ImmNone, features.SIMD},
	OpI8x16Sub:               {"i8x16.sub", ImmNone, features.SIMD},
	OpI8x16SubSaturateS:      {"i8x16.sub_saturate_s", ImmNone, features.SIMD},
	OpI8x16SubSaturateU:      {"i8x16.sub_saturate_u", ImmNone, features.SIMD},
	OpI8x16Mul:               {"i8x16.mul", ImmNone, features.SIMD},
	OpI16x8Neg:               {"i16x8.neg", ImmNone, features.SIMD},
	OpI16x8AnyTrue:           {"i16x8.any_true", ImmNone, features.SIMD},
	OpI16x8AllTrue:           {"i16x8.all_true", ImmNone, features.SIMD},
	OpI16x8Shl:               {"i16x8.shl", ImmNone, features.SIMD},
	OpI16x8ShrS:              {"i16x8.shr_s", ImmNone, features.SIMD},
	OpI16x8ShrU:              {"i16x8.shr_u", ImmNone, features.SIMD},
	OpI16x8Add:               {"i16x8.add", ImmNone, features.SIMD},
	OpI16x8AddSaturateS:      {"i16x8.add_saturate_s", ImmNone, features.SIMD},
	OpI16x8AddSaturateU:      {"i16x8.add_saturate_u", ImmNone, features.SIMD},
	OpI16x8Sub:               {"i16x8.sub", ImmNone, features.SIMD},
	OpI16x8SubSaturateS:      {"i16x8.sub_saturate_s", ImmNone, features.SIMD},
	OpI16x8SubSaturateU:      {"i16x8.sub_saturate_u", ImmNone, features.SIMD},
	OpI16x8Mul:               {"i16x8.mul", ImmNone, features.SIMD},
	OpI32x4Neg:               {"i32x4.neg", ImmNone, features.SIMD},
	OpI32x4AnyTrue:           {"i32x4.any_true", ImmNone, features.SIMD},
	OpI32x4AllTrue:           {"i32x4.all_true", ImmNone, features.SIMD},
	OpI32x4Shl:               {"i32x4.shl", ImmNone, features.SIMD},
	OpI32x4ShrS:              {"i32x4.shr_s", ImmNone, features.SIMD},
	OpI32x4ShrU:              {"i32x4.shr_u", ImmNone, features.SIMD},
	OpI32x4Add:               {"i32x4.add", ImmNone, features.SIMD},
	OpI32x4Sub:               {"i32x4.sub", ImmNone, features.SIMD},
	OpI32x4Mul:               {"i32x4.mul", ImmNone, features.SIMD},
	OpI64x2Neg:               {"i64x2.neg", ImmNone, features.SIMD},
	OpI64x2AnyTrue:           {"i64x2.any_true", ImmNone, features.SIMD},
	OpI64x2AllTrue:           {"i64x2.all_true", ImmNone, features.SIMD},
	OpI64x2Shl:               {"i64x2.shl", ImmNone, features.SIMD},
	OpI64x2ShrS:              {"i64x2.shr_s", ImmNone, features.SIMD},
	OpI64x2ShrU:              {"i64x2.shr_u", ImmNone, features.SIMD},
	OpI64x2Add:               {"i64x2.add", ImmNone, features.SIMD},
	OpI64x2Sub:               {"i64x2.sub", ImmNone, features.SIMD},
	OpF32x4Abs:               {"f32x4.abs", ImmNone, features.SIMD},
	OpF32x4Neg:               {"f32x4.neg", ImmNone, features.SIMD},
	OpF32x4Sqrt:              {"f32x4.sqrt", ImmNone, features.SIMD},
	OpF32x4Add:               {"f32x4.add", ImmNone, features.SIMD},
	OpF32x4Sub:               {"f32x4.sub", ImmNone, features.SIMD},
	OpF32x4Mul:               {"f32x4.mul", ImmNone, features.SIMD},
	OpF32x4Div:               {"f32x4.div", ImmNone, features.SIMD},
	OpF32x4Min:               {"f32x4.min", ImmNone, features.SIMD},
	OpF32x4Max:               {"f32x4.max", ImmNone, features.SIMD},
	OpF64x2Abs:               {"f64x2.abs", ImmNone, features.SIMD},
	OpF64x2Neg:               {"f64x2.neg", ImmNone, features.SIMD},
	OpF64x2Sqrt:              {"f64x2.sqrt", ImmNone, features.SIMD},
	OpF64x2Add:               {"f64x2.add", ImmNone, features.SIMD},
	OpF64x2Sub:               {"f64x2.sub", ImmNone, features.SIMD},
	OpF64x2Mul:               {"f64x2.mul", ImmNone, features.SIMD},
	OpF64x2Div:               {"f64x2.div", ImmNone, features.SIMD},
	OpF64x2Min:               {"f64x2.min", ImmNone, features.SIMD},
	OpF64x2Max:               {"f64x2.max", ImmNone, features.SIMD},
	OpI32x4TruncSatF32x4S:    {"i32x4.trunc_sat_f32x4_s", ImmNone, features.SIMD},
	OpI32x4TruncSatF32x4U:    {"i32x4.trunc_sat_f32x4_u", ImmNone, features.SIMD},
	OpI64x2TruncSatF64x2S:    {"i64x2.trunc_sat_f64x2_s", ImmNone, features.SIMD},
	OpI64x2TruncSatF64x2U:    {"i64x2.trunc_sat_f64x2_u", ImmNone, features.SIMD},
	OpF32x4ConvertI32x4S:     {"f32x4.convert_i32x4_s", ImmNone, features.SIMD},
	OpF32x4ConvertI32x4U:     {"f32x4.convert_i32x4_u", ImmNone, features.SIMD},
	OpF64x2ConvertI64x2S:     {"f64x2.convert_i64x2_s", ImmNone, features.SIMD},
	OpF64x2ConvertI64x2U:     {"f64x2.convert_i64x2_u", ImmNone, features.SIMD},
	OpV8x16Swizzle:           {"v8x16.swizzle", ImmNone, features.SIMD},
	OpV8x16LoadSplat:         {"v8x16.load_splat", ImmMemArg, features.SIMD},
	OpV16x8LoadSplat:         {"v16x8.load_splat", ImmMemArg, features.SIMD},
	OpV32x4LoadSplat:         {"v32x4.load_splat", ImmMemArg, features.SIMD},
	OpV64x2LoadSplat:         {"v64x2.load_splat", ImmMemArg, features.SIMD},
	OpI8x16NarrowI16x8S:      {"i8x16.narrow_i16x8_s", ImmNone, features.SIMD},
	OpI8x16NarrowI16x8U:      {"i8x16.narrow_i16x8_u", ImmNone, features.SIMD},
	OpI16x8NarrowI32x4S:      {"i16x8.narrow_i32x4_s", ImmNone, features.SIMD},
	OpI16x8NarrowI32x4U:      {"i16x8.narrow_i32x4_u", ImmNone, features.SIMD},
	OpI16x8WidenLowI8x16S:    {"i16x8.widen_low_i8x16_s", ImmNone, features.SIMD},
	OpI16x8WidenHighI8x16S:   {"i16x8.widen_high_i8x16_s", ImmNone, features.SIMD},
	OpI16x8WidenLowI8x16U:    {"i16x8.widen_low_i8x16_u", ImmNone, features.SIMD},
	OpI16x8WidenHighI8x16U:   {"i16x8.widen_high_i8x16_u", ImmNone, features.SIMD},
	OpI32x4WidenLowI16x8S:    {"i32x4.widen_low_i16x8_s", ImmNone, features.SIMD},
	OpI32x4WidenHighI16x8S:   {"i32x4.widen_high_i16x8_s", ImmNone, features.SIMD},
	OpI32x4WidenLowI16x8U:    {"i32x4.widen_low_i16x8_u", ImmNone, features.SIMD},
	OpI32x4WidenHighI16x8U:   {"i32x4.widen_high_i16x8_u", ImmNone, features.SIMD},
	OpI16x8Load8x8S:          {"i16x8.load8x8_s", ImmMemArg, features.SIMD},
	OpI16x8Load8x8U:          {"i16x8.load8x8_u", ImmMemArg, features.SIMD},
	OpI32x4Load16x4S:         {"i32x4.load16x4_s", ImmMemArg, features.SIMD},
	OpI32x4Load16x4U:         {"i32x4.load16x4_u", ImmMemArg, features.SIMD},
	OpI64x2Load32x2S:         {"i64x2.load32x2_s", ImmMemArg, features.SIMD},
	OpI64x2Load32x2U:         {"i64x2.load32x2_u", ImmMemArg, features.SIMD},
	OpV128Andnot:             {"v128.andnot", ImmNone, features.SIMD},
	OpI8x16AvgrU:             {"i8x16.avgr_u", ImmNone, features.SIMD},
	OpI16x8AvgrU:             {"i16x8.avgr_u", ImmNone, features.SIMD},
	OpAtomicNotify:           {"atomic.notify", ImmMemArg, features.Threads},
	OpI32AtomicWait:          {"i32.atomic.wait", ImmMemArg, features.Threads},
	OpI64AtomicWait:          {"i64.atomic.wait", ImmMemArg, features.Threads},
	OpI32AtomicLoad:          {"i32.atomic.load", ImmMemArg, features.Threads},
	OpI64AtomicLoad:          {"i64.atomic.load", ImmMemArg, features.Threads},
	OpI32AtomicLoad8U:        {"i32.atomic.load8_u", ImmMemArg, features.Threads},
	OpI32AtomicLoad16U:       {"i32.atomic.load16_u", ImmMemArg, features.Threads},
	OpI64AtomicLoad8U:        {"i64.atomic.load8_u", ImmMemArg, features.Threads},
	OpI64AtomicLoad16U:       {"i64.atomic.load16_u", ImmMemArg, features.Threads},
	OpI64AtomicLoad32U:       {"i64.atomic.load32_u", ImmMemArg, features.Threads},
	OpI32AtomicStore:         {"i32.atomic.store", ImmMemArg, features.Threads},
	OpI64AtomicStore:         {"i64.atomic.store", ImmMemArg, features.Threads},
	OpI32AtomicStore8:        {"i32.atomic.store8", ImmMemArg, features.Threads},
	OpI32AtomicStore16:       {"i32.atomic.store16", ImmMemArg, features.Threads},
	OpI64AtomicStore8:        {"i64.atomic.store8", ImmMemArg, features.Threads},
	OpI64AtomicStore16:       {"i64.atomic.store16", ImmMemArg, features.Threads},
	OpI64AtomicStore32:       {"i64.atomic.store32", ImmMemArg, features.Threads},
	OpI32AtomicRmwAdd:        {"i32.atomic.rmw.add", ImmMemArg, features.Threads},
	OpI64AtomicRmwAdd:        {"i64.atomic.rmw.add", ImmMemArg, features.Threads},
	OpI32AtomicRmw8AddU:      {"i32.atomic.rmw8.add_u", ImmMemArg, features.Threads},
	OpI32AtomicRmw16AddU:     {"i32.atomic.rmw16.add_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw8AddU:      {"i64.atomic.rmw8.add_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw16AddU:     {"i64.atomic.rmw16.add_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw32AddU:     {"i64.atomic.rmw32.add_u", ImmMemArg, features.Threads},
	OpI32AtomicRmwSub:        {"i32.atomic.rmw.sub", ImmMemArg, features.Threads},
	OpI64AtomicRmwSub:        {"i64.atomic.rmw.sub", ImmMemArg, features.Threads},
	OpI32AtomicRmw8SubU:      {"i32.atomic.rmw8.sub_u", ImmMemArg, features.Threads},
	OpI32AtomicRmw16SubU:     {"i32.atomic.rmw16.sub_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw8SubU:      {"i64.atomic.rmw8.sub_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw16SubU:     {"i64.atomic.rmw16.sub_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw32SubU:     {"i64.atomic.rmw32.sub_u", ImmMemArg, features.Threads},
	OpI32AtomicRmwAnd:        {"i32.atomic.rmw.and", ImmMemArg, features.Threads},
	OpI64AtomicRmwAnd:        {"i64.atomic.rmw.and", ImmMemArg, features.Threads},
	OpI32AtomicRmw8AndU:      {"i32.atomic.rmw8.and_u", ImmMemArg, features.Threads},
	OpI32AtomicRmw16AndU:     {"i32.atomic.rmw16.and_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw8AndU:      {"i64.atomic.rmw8.and_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw16AndU:     {"i64.atomic.rmw16.and_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw32AndU:     {"i64.atomic.rmw32.and_u", ImmMemArg, features.Threads},
	OpI32AtomicRmwOr:         {"i32.atomic.rmw.or", ImmMemArg, features.Threads},
	OpI64AtomicRmwOr:         {"i64.atomic.rmw.or", ImmMemArg, features.Threads},
	OpI32AtomicRmw8OrU:       {"i32.atomic.rmw8.or_u", ImmMemArg, features.Threads},
	OpI32AtomicRmw16OrU:      {"i32.atomic.rmw16.or_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw8OrU:       {"i64.atomic.rmw8.or_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw16OrU:      {"i64.atomic.rmw16.or_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw32OrU:      {"i64.atomic.rmw32.or_u", ImmMemArg, features.Threads},
	OpI32AtomicRmwXor:        {"i32.atomic.rmw.xor", ImmMemArg, features.Threads},
	OpI64AtomicRmwXor:        {"i64.atomic.rmw.xor", ImmMemArg, features.Threads},
	OpI32AtomicRmw8XorU:      {"i32.atomic.rmw8.xor_u", ImmMemArg, features.Threads},
	OpI32AtomicRmw16XorU:     {"i32.atomic.rmw16.xor_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw8XorU:      {"i64.atomic.rmw8.xor_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw16XorU:     {"i64.atomic.rmw16.xor_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw32XorU:     {"i64.atomic.rmw32.xor_u", ImmMemArg, features.Threads},
	OpI32AtomicRmwXchg:       {"i32.atomic.rmw.xchg", ImmMemArg, features.Threads},
	OpI64AtomicRmwXchg:       {"i64.atomic.rmw.xchg", ImmMemArg, features.Threads},
	OpI32AtomicRmw8XchgU:     {"i32.atomic.rmw8.xchg_u", ImmMemArg, features.Threads},
	OpI32AtomicRmw16XchgU:    {"i32.atomic.rmw16.xchg_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw8XchgU:     {"i64.atomic.rmw8.xchg_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw16XchgU:    {"i64.atomic.rmw16.xchg_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw32XchgU:    {"i64.atomic.rmw32.xchg_u", ImmMemArg, features.Threads},
	OpI32AtomicRmwCmpxchg:    {"i32.atomic.rmw.cmpxchg", ImmMemArg, features.Threads},
	OpI64AtomicRmwCmpxchg:    {"i64.atomic.rmw.cmpxchg", ImmMemArg, features.Threads},
	OpI32AtomicRmw8CmpxchgU:  {"i32.atomic.rmw8.cmpxchg_u", ImmMemArg, features.Threads},
	OpI32AtomicRmw16CmpxchgU: {"i32.atomic.rmw16.cmpxchg_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw8CmpxchgU:  {"i64.atomic.rmw8.cmpxchg_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw16CmpxchgU: {"i64.atomic.rmw16.cmpxchg_u", ImmMemArg, features.Threads},
	OpI64AtomicRmw32CmpxchgU: {"i64.atomic.rmw32.cmpxchg_u", ImmMemArg, features.Threads},
}

// Prefix returns the prefix byte of a prefixed opcode, or 0.
func (op Opcode) Prefix() byte {
	return byte(op >> 8)
}

// Code returns the opcode byte, or the sub-opcode for prefixed opcodes.
func (op Opcode) Code() uint32 {
	return uint32(op & 0xFF)
}

// Known reports whether op is a defined opcode.
func (op Opcode) Known() bool {
	_, ok := opcodeInfos[op]
	return ok
}

// Imm returns the immediate kind carried by op.
func (op Opcode) Imm() ImmKind {
	return opcodeInfos[op].imm
}

// Feature returns the feature op requires, or 0 for core opcodes.
func (op Opcode) Feature() features.Feature {
	return opcodeInfos[op].feature
}

// String returns the text format mnemonic.
func (op Opcode) String() string {
	if info, ok := opcodeInfos[op]; ok {
		return info.name
	}
	if p := op.Prefix(); p != 0 {
		return fmt.Sprintf("<unknown 0x%02x 0x%02x>", p, op.Code())
	}
	return fmt.Sprintf("<unknown 0x%02x>", byte(op))
}

// IsPrefix reports whether b introduces a prefixed opcode.
func IsPrefix(b byte) bool {
	return b == PrefixMisc || b == PrefixSIMD || b == PrefixAtomic
}

// LookupOpcode resolves a primary byte, or a prefix and sub-opcode, to an
// Opcode. For primary opcodes prefix is 0.
func LookupOpcode(prefix byte, code uint32) (Opcode, bool) {
	if code > 0xFF || (prefix != 0 && !IsPrefix(prefix)) {
		return 0, false
	}
	op := Opcode(uint16(prefix)<<8 | uint16(code))
	if !op.Known() {
		return 0, false
	}
	return op, true
}

// Opcodes returns every defined opcode in encoding order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeInfos))
	for op := range opcodeInfos {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}
