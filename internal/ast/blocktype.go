// Package ast holds the types produced by the (out-of-scope) project
// parser: the block graph, targets, and raw literal/pointer values that
// the transformer consumes. Nothing in this package executes anything.
package ast

// BlockType is the opcode of a block, e.g. "motion_movesteps". It is kept
// as its wire string rather than a dense int, because these values come
// from project.json and are matched exhaustively by name in the
// transformer and interpreter.
type BlockType string

const (
	MotionMoveSteps          BlockType = "motion_movesteps"
	MotionTurnRight          BlockType = "motion_turnright"
	MotionTurnLeft           BlockType = "motion_turnleft"
	MotionGoTo               BlockType = "motion_goto"
	MotionGoToXY             BlockType = "motion_gotoxy"
	MotionGlideTo            BlockType = "motion_glideto"
	MotionGlideSecsToXY      BlockType = "motion_glidesecstoxy"
	MotionPointInDirection   BlockType = "motion_pointindirection"
	MotionPointTowards       BlockType = "motion_pointtowards"
	MotionChangeXBy          BlockType = "motion_changexby"
	MotionSetX               BlockType = "motion_setx"
	MotionChangeYBy          BlockType = "motion_changeyby"
	MotionSetY               BlockType = "motion_sety"
	MotionIfOnEdgeBounce     BlockType = "motion_ifonedgebounce"
	MotionSetRotationStyle   BlockType = "motion_setrotationstyle"

	LooksSayForSecs              BlockType = "looks_sayforsecs"
	LooksSay                     BlockType = "looks_say"
	LooksThinkForSecs            BlockType = "looks_thinkforsecs"
	LooksThink                   BlockType = "looks_think"
	LooksSwitchBackdropTo        BlockType = "looks_switchbackdropto"
	LooksSwitchBackdropToAndWait BlockType = "looks_switchbackdroptoandwait"
	LooksNextBackdrop            BlockType = "looks_nextbackdrop"
	LooksNextCostume             BlockType = "looks_nextcostume"
	LooksChangeSizeBy            BlockType = "looks_changesizeby"
	LooksSetSizeTo               BlockType = "looks_setsizeto"
	LooksChangeEffectBy          BlockType = "looks_changeeffectby"
	LooksSetEffectTo             BlockType = "looks_seteffectto"
	LooksClearGraphicEffects     BlockType = "looks_cleargraphiceffects"
	LooksShow                    BlockType = "looks_show"
	LooksHide                    BlockType = "looks_hide"
	LooksGoToFrontBack           BlockType = "looks_gotofrontback"
	LooksGoForwardBackwardLayers BlockType = "looks_goforwardbackwardlayers"

	SoundStopAllSounds    BlockType = "sound_stopallsounds"
	SoundChangeEffectBy   BlockType = "sound_changeeffectby"
	SoundSetEffectTo      BlockType = "sound_seteffectto"
	SoundClearEffects     BlockType = "sound_cleareffects"
	SoundChangeVolumeBy   BlockType = "sound_changevolumeby"
	SoundSetVolumeTo      BlockType = "sound_setvolumeto"

	EventWhenFlagClicked        BlockType = "event_whenflagclicked"
	EventWhenKeyPressed         BlockType = "event_whenkeypressed"
	EventWhenStageClicked       BlockType = "event_whenstageclicked"
	EventWhenThisSpriteClicked  BlockType = "event_whenthisspriteclicked"
	EventWhenBackdropSwitchesTo BlockType = "event_whenbackdropswitchesto"
	EventWhenGreaterThan        BlockType = "event_whengreaterthan"
	EventWhenBroadcastReceived  BlockType = "event_whenbroadcastreceived"
	EventBroadcast              BlockType = "event_broadcast"
	EventBroadcastAndWait       BlockType = "event_broadcastandwait"

	ControlWait            BlockType = "control_wait"
	ControlRepeat          BlockType = "control_repeat"
	ControlIf              BlockType = "control_if"
	ControlIfElse          BlockType = "control_if_else"
	ControlStop            BlockType = "control_stop"
	ControlForever         BlockType = "control_forever"
	ControlCreateCloneOf   BlockType = "control_create_clone_of"
	ControlStartAsClone    BlockType = "control_start_as_clone"
	ControlDeleteThisClone BlockType = "control_delete_this_clone"

	SensingTouchingObject       BlockType = "sensing_touchingobject"
	SensingTouchingColor        BlockType = "sensing_touchingcolor"
	SensingColorIsTouchingColor BlockType = "sensing_coloristouchingcolor"
	SensingDistanceTo           BlockType = "sensing_distanceto"
	SensingKeyPressed           BlockType = "sensing_keypressed"
	SensingMouseDown            BlockType = "sensing_mousedown"
	SensingMouseX               BlockType = "sensing_mousex"
	SensingMouseY               BlockType = "sensing_mousey"
	SensingSetDragMode          BlockType = "sensing_setdragmode"
	SensingResetTimer           BlockType = "sensing_resettimer"
	SensingDaysSince2000        BlockType = "sensing_dayssince2000"
	SensingUsername             BlockType = "sensing_username"

	OperatorAdd      BlockType = "operator_add"
	OperatorSubtract BlockType = "operator_subtract"
	OperatorMultiply BlockType = "operator_multiply"
	OperatorDivide   BlockType = "operator_divide"
	OperatorRandom   BlockType = "operator_random"
	OperatorGt       BlockType = "operator_gt"
	OperatorLt       BlockType = "operator_lt"
	OperatorEquals   BlockType = "operator_equals"
	OperatorAnd      BlockType = "operator_and"
	OperatorOr       BlockType = "operator_or"
	OperatorNot      BlockType = "operator_not"
	OperatorJoin     BlockType = "operator_join"
	OperatorLetterOf BlockType = "operator_letter_of"
	OperatorLength   BlockType = "operator_length"
	OperatorContains BlockType = "operator_contains"
	OperatorMod      BlockType = "operator_mod"
	OperatorRound    BlockType = "operator_round"
	OperatorMathop   BlockType = "operator_mathop"

	DataSetVariableTo    BlockType = "data_setvariableto"
	DataChangeVariableBy BlockType = "data_changevariableby"
	DataShowVariable     BlockType = "data_showvariable"
	DataHideVariable     BlockType = "data_hidevariable"

	DataAddToList         BlockType = "data_addtolist"
	DataListDeleteElement BlockType = "data_deleteoflist"
	DataListClear         BlockType = "data_deletealloflist"
	DataListInsertAt      BlockType = "data_insertatlist"
	DataListReplaceItem   BlockType = "data_replaceitemoflist"
	DataListItemAt        BlockType = "data_itemoflist"
	DataListIndexOf       BlockType = "data_itemnumoflist"
	DataListLengthOf      BlockType = "data_lengthoflist"
	DataListContainsItem  BlockType = "data_listcontainsitem"
	DataListShow          BlockType = "data_showlist"
	DataListHide          BlockType = "data_hidelist"

	ProceduresDefinition         BlockType = "procedures_definition"
	ProceduresCall               BlockType = "procedures_call"
	ArgumentReporterStringNumber BlockType = "argument_reporter_string_number"
	ArgumentReporterBoolean      BlockType = "argument_reporter_boolean"

	// Hidden, but still legal blocks.
	ProceduresPrototype       BlockType = "procedures_prototype"
	ArgumentEditorBoolean     BlockType = "argument_editor_boolean"
	ArgumentEditorStringNumber BlockType = "argument_editor_string_number"
	Note                      BlockType = "note"
	MathPositiveNumber        BlockType = "math_positive_number"
	MathWholeNumber           BlockType = "math_whole_number"
	MathInteger               BlockType = "math_integer"
	MathAngle                 BlockType = "math_angle"
	ColourPicker              BlockType = "colour_picker"
	Text                      BlockType = "text"
	DataVariable              BlockType = "data_variable"
	DataListContents          BlockType = "data_listcontents"
)

// HatBlocks is the set of opcodes that seed a new Thread. Order does not
// matter; it is a membership set.
var HatBlocks = map[BlockType]bool{
	EventWhenFlagClicked:        true,
	EventWhenKeyPressed:         true,
	EventWhenThisSpriteClicked:  true,
	EventWhenStageClicked:       true,
	EventWhenBroadcastReceived:  true,
	EventWhenBackdropSwitchesTo: true,
	EventWhenGreaterThan:        true,
	ControlStartAsClone:         true,
	ProceduresDefinition:        true,
}
